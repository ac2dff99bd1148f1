package citations

import (
	"regexp"

	"paperchat/internal/models"
)

const (
	maxScannedDocs = 2
	maxRefsPerDoc  = 10
	maxShownRefs   = 5
)

// Section patterns are tried in priority order; the first one that matches
// a references section wins and stops further attempts for that document.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)(?:^|\n)[ \t]*(?:references|bibliography|works cited)\s*\n(.*?)(?:\n\n\n|\z)`),
	regexp.MustCompile(`(?is)(?:^|\n)[ \t]*(?:references|bibliography)\s*\n(.*?)(?:appendix|\z)`),
}

// entryPattern matches one reference of the common academic shape:
// capitalized author text, a parenthesized four-digit year, then the title
// text up to its closing period.
var entryPattern = regexp.MustCompile(`[A-Z][^.]+\.\s*\(\d{4}\)\.?[^.]+\.`)

// ExtractReferences pulls individual bibliography entries out of a
// document's raw text: locate a references/bibliography section, then
// collect dated entries within it, at most ten per document.
func ExtractReferences(text string) []string {
	for _, p := range sectionPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		entries := entryPattern.FindAllString(m[1], maxRefsPerDoc)
		return entries
	}
	return nil
}

// CollectReferences scans at most the first two documents and caps the
// combined result at five displayed entries.
func CollectReferences(docs []models.Document) []string {
	out := make([]string, 0, maxShownRefs)
	for i, d := range docs {
		if i == maxScannedDocs {
			break
		}
		out = append(out, ExtractReferences(d.Text)...)
	}
	if len(out) > maxShownRefs {
		out = out[:maxShownRefs]
	}
	return out
}

var sourceMarkerPattern = regexp.MustCompile(`\[Source \d+[^\]]*\]`)

// SourceMarkers returns the distinct [Source N] tokens cited in an answer,
// in first-appearance order.
func SourceMarkers(answer string) []string {
	matches := sourceMarkerPattern.FindAllString(answer, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
