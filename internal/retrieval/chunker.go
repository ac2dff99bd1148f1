package retrieval

import (
	"strings"

	"paperchat/internal/models"
)

const (
	pageMarkerOpen  = "--- Page "
	pageMarkerClose = " ---"
)

// ExtractChunks splits page-delimited document text into one chunk per
// non-empty page. Page boundaries are the literal "--- Page <n> ---"
// markers the extractor writes. Text without any marker becomes a single
// chunk labeled page "1"; a segment whose page number cannot be parsed
// is labeled "?".
func ExtractChunks(text, filename string) []models.Chunk {
	segments := strings.Split(text, pageMarkerOpen)
	chunks := make([]models.Chunk, 0, len(segments))
	for i, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		// The first segment precedes any marker and carries no label.
		page := "1"
		body := seg
		if i > 0 {
			page = "?"
			if idx := strings.Index(seg, pageMarkerClose); idx > 0 {
				if label := strings.TrimSpace(seg[:idx]); isDigits(label) {
					page = label
					body = seg[idx+len(pageMarkerClose):]
				}
			}
		}
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{Text: body, Page: page, Source: filename})
	}
	return chunks
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
