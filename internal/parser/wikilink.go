package parser

import "strings"

// idLinkPrefix marks a wikilink target that names a node id directly.
const idLinkPrefix = "id:"

// WikiLink is one [[...]] reference found in a document.
type WikiLink struct {
	// Raw is the full matched text, brackets included.
	Raw string

	// Target is the referenced title, alias, or node id.
	Target string

	// Display is the optional text after the pipe, empty when absent.
	Display string

	// IsIDLink marks an id: target that bypasses title resolution.
	IsIDLink bool

	// Start and End are the byte span [Start,End) of Raw in the file.
	Start int
	End   int
}

// ExtractWikiLinks returns the wikilinks in body in document order, with
// file-offset spans. Matches inside an exclusion zone are skipped unless
// the zone is the wikilink's own: only ZoneWikiLink zones may overlap a
// returned link.
func ExtractWikiLinks(body string, contentStart int, zones []ExclusionZone) []WikiLink {
	var links []WikiLink
	for _, m := range wikilinkRe.FindAllStringSubmatchIndex(body, -1) {
		start := m[0] + contentStart
		end := m[1] + contentStart
		if z, ok := zoneAt(zones, start, end); ok && z.Kind != ZoneWikiLink {
			continue
		}

		inner := body[m[2]:m[3]]
		target, display := splitAlias(inner)
		if target == "" {
			continue
		}

		wl := WikiLink{
			Raw:     body[m[0]:m[1]],
			Target:  target,
			Display: display,
			Start:   start,
			End:     end,
		}
		if rest, ok := strings.CutPrefix(target, idLinkPrefix); ok {
			wl.IsIDLink = true
			wl.Target = strings.TrimSpace(rest)
			if wl.Target == "" {
				continue
			}
		}
		links = append(links, wl)
	}
	return links
}

// splitAlias divides [[Target|Display]] contents at the first pipe.
func splitAlias(inner string) (target, display string) {
	if i := strings.Index(inner, "|"); i >= 0 {
		return strings.TrimSpace(inner[:i]), strings.TrimSpace(inner[i+1:])
	}
	return strings.TrimSpace(inner), ""
}
