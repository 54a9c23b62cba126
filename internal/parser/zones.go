package parser

import (
	"regexp"
	"sort"
)

// ZoneKind tags why a byte range is excluded from link scanning.
type ZoneKind string

const (
	ZoneFrontmatter  ZoneKind = "frontmatter"
	ZoneFencedCode   ZoneKind = "fenced_code"
	ZoneInlineCode   ZoneKind = "inline_code"
	ZoneURL          ZoneKind = "url"
	ZoneMarkdownLink ZoneKind = "markdown_link"
	ZoneWikiLink     ZoneKind = "wikilink"
	ZoneHTML         ZoneKind = "html"
	ZoneMath         ZoneKind = "math"
)

// ExclusionZone is a [Start,End) byte range that must not be scanned for
// new links. Offsets are relative to the whole file.
type ExclusionZone struct {
	// Start is the first byte of the zone.
	Start int

	// End is one past the last byte of the zone.
	End int

	// Kind records which pattern produced the zone.
	Kind ZoneKind
}

var (
	fencedCodeRe   = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe   = regexp.MustCompile("`[^`\n]+`")
	urlRe          = regexp.MustCompile(`https?://[^\s<>)\]]+`)
	markdownLinkRe = regexp.MustCompile(`\[[^\]\n]*\]\([^)\n]*\)`)
	wikilinkRe     = regexp.MustCompile(`\[\[(.*?)\]\]`)
	htmlCommentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlTagRe      = regexp.MustCompile(`</?[a-zA-Z][^>\n]*>`)
	displayMathRe  = regexp.MustCompile(`(?s)\$\$.*?\$\$`)
	inlineMathRe   = regexp.MustCompile(`\$[^$\n]+\$`)
)

// zonePatterns pairs each detector with its kind. Container patterns come
// first so that merging keeps the container's kind for nested matches.
var zonePatterns = []struct {
	re   *regexp.Regexp
	kind ZoneKind
}{
	{fencedCodeRe, ZoneFencedCode},
	{inlineCodeRe, ZoneInlineCode},
	{htmlCommentRe, ZoneHTML},
	{htmlTagRe, ZoneHTML},
	{displayMathRe, ZoneMath},
	{inlineMathRe, ZoneMath},
	{markdownLinkRe, ZoneMarkdownLink},
	{urlRe, ZoneURL},
	{wikilinkRe, ZoneWikiLink},
}

// DetectExclusionZones scans body (the document content beginning at
// contentStart within the file) and returns the merged exclusion zones in
// file offsets. Overlapping or adjacent zones are merged, keeping the
// earlier zone's kind; a frontmatter zone covering [0, contentStart) is
// prepended when contentStart > 0.
func DetectExclusionZones(body string, contentStart int) []ExclusionZone {
	var zones []ExclusionZone
	for _, p := range zonePatterns {
		for _, m := range p.re.FindAllStringIndex(body, -1) {
			zones = append(zones, ExclusionZone{
				Start: m[0] + contentStart,
				End:   m[1] + contentStart,
				Kind:  p.kind,
			})
		}
	}

	// Containers sort before their contents, so merging keeps their kind.
	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].Start != zones[j].Start {
			return zones[i].Start < zones[j].Start
		}
		return zones[i].End > zones[j].End
	})

	merged := make([]ExclusionZone, 0, len(zones))
	for _, z := range zones {
		if n := len(merged); n > 0 && z.Start <= merged[n-1].End {
			if z.End > merged[n-1].End {
				merged[n-1].End = z.End
			}
			continue
		}
		merged = append(merged, z)
	}

	if contentStart > 0 {
		merged = append([]ExclusionZone{{Start: 0, End: contentStart, Kind: ZoneFrontmatter}}, merged...)
	}
	return merged
}

// zoneAt returns the zone containing or overlapping [start,end), if any.
func zoneAt(zones []ExclusionZone, start, end int) (ExclusionZone, bool) {
	for _, z := range zones {
		if start < z.End && z.Start < end {
			return z, true
		}
	}
	return ExclusionZone{}, false
}
