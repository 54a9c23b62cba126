// Package parser extracts the structural facts of a Markdown document:
// frontmatter metadata, title, wikilinks, headings, and the exclusion
// zones (code, URLs, HTML, math) that must not be scanned for links.
package parser

import (
	"regexp"
	"strings"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// liftedKeys are frontmatter fields promoted to node fields; everything
// else stays in the metadata bag.
var liftedKeys = []string{"id", "title", "type", "aliases", "tags"}

// Heading is one heading line in the document body.
type Heading struct {
	// Level is the heading depth, 1 through 6.
	Level int

	// Text is the heading content without the marker.
	Text string
}

// ParsedDocument is the immutable structural record of one document,
// consumed by the indexing pipeline.
type ParsedDocument struct {
	// Path is the absolute path of the file.
	Path string

	// RelativePath is the vault-relative path, used as node path.
	RelativePath string

	// ID is the explicit frontmatter id, empty unless declared.
	ID string

	// Title is the resolved display title.
	Title string

	// Type is the node type, defaulting to note.
	Type graph.NodeType

	// Aliases are alternate titles from frontmatter.
	Aliases []string

	// Tags are frontmatter tags plus inline #tags, deduplicated.
	Tags []string

	// Metadata holds frontmatter fields not promoted to node fields.
	Metadata map[string]any

	// Links are the wikilinks found outside exclusion zones, in order.
	Links []WikiLink

	// Headings is the document outline.
	Headings []Heading

	// Paragraphs counts the prose blocks outside headings and fences.
	Paragraphs int

	// ContentStart is the byte offset of the first body byte.
	ContentStart int

	// Zones are the merged exclusion zones, frontmatter included.
	Zones []ExclusionZone
}

// Parse builds the structural record for one document. The only failure
// path is malformed frontmatter YAML, returned as a *ParseError.
func Parse(path, relativePath, content string) (*ParsedDocument, error) {
	fm, contentStart, err := splitFrontmatter(path, content)
	if err != nil {
		return nil, err
	}
	body := content[contentStart:]

	zones := DetectExclusionZones(body, contentStart)
	links := ExtractWikiLinks(body, contentStart, zones)
	headings, paragraphs := walkStructure(body)

	typeStr, _ := fm["type"].(string)
	id, _ := fm["id"].(string)

	doc := &ParsedDocument{
		Path:         path,
		RelativePath: relativePath,
		ID:           strings.TrimSpace(id),
		Title:        DeriveTitle(fm, body, path),
		Type:         graph.ParseNodeType(typeStr),
		Aliases:      stringList(fm["aliases"]),
		Tags:         collectTags(fm, body),
		Metadata:     metadataBag(fm),
		Links:        links,
		Headings:     headings,
		Paragraphs:   paragraphs,
		ContentStart: contentStart,
		Zones:        zones,
	}
	return doc, nil
}

// walkStructure runs a light line walk over the body, collecting the
// heading outline and counting paragraph blocks.
func walkStructure(body string) ([]Heading, int) {
	var headings []Heading
	paragraphs := 0
	inParagraph := false
	inFence := false

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			inParagraph = false
			continue
		}
		if inFence {
			continue
		}
		if trimmed == "" {
			inParagraph = false
			continue
		}
		if level := headingLevel(trimmed); level > 0 {
			headings = append(headings, Heading{
				Level: level,
				Text:  strings.TrimSpace(trimmed[level+1:]),
			})
			inParagraph = false
			continue
		}
		if !inParagraph {
			paragraphs++
			inParagraph = true
		}
	}
	return headings, paragraphs
}

// headingLevel returns the ATX heading depth of a line, or 0 when the
// line is not a heading.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0
	}
	return level
}

// collectTags merges frontmatter tags with inline #tags from the body.
func collectTags(fm map[string]any, body string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range stringList(fm["tags"]) {
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		if _, dup := seen[m[1]]; !dup {
			seen[m[1]] = struct{}{}
			out = append(out, m[1])
		}
	}
	return out
}

// metadataBag copies the frontmatter map minus the promoted keys.
func metadataBag(fm map[string]any) map[string]any {
	if len(fm) == 0 {
		return nil
	}
	bag := make(map[string]any, len(fm))
	for k, v := range fm {
		bag[k] = v
	}
	for _, k := range liftedKeys {
		delete(bag, k)
	}
	if len(bag) == 0 {
		return nil
	}
	return bag
}
