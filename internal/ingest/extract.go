// Package ingest turns uploaded PDFs into the page-marked plain text the
// retrieval pipeline consumes.
package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"paperchat/internal/util"
)

// ExtractText reads a PDF and returns its text with every non-empty page
// prefixed by a "--- Page N ---" marker, pages joined by a blank line, and
// the count of pages that contributed text. Page numbers are the document's
// own, so a blank page leaves a gap in the markers rather than renumbering
// the rest.
//
// The underlying parser panics on some malformed files; those are converted
// to ordinary errors so a bad upload fails alone.
func ExtractText(ra io.ReaderAt, size int64) (text string, pages int, err error) {
	defer func() {
		if v := recover(); v != nil {
			text, pages = "", 0
			err = fmt.Errorf("parse pdf: %v", v)
		}
	}()

	rd, err := pdf.NewReader(ra, size)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var parts []string
	for i := 1; i <= rd.NumPage(); i++ {
		p := rd.Page(i)
		if p.V.IsNull() {
			continue
		}
		raw, err := p.GetPlainText(nil)
		if err != nil {
			// An unreadable page is skipped, not fatal.
			continue
		}
		clean := util.SanitizeText(raw)
		if clean == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i, clean))
	}
	if len(parts) == 0 {
		return "", 0, util.ErrNoExtractableText
	}
	return strings.Join(parts, "\n\n"), len(parts), nil
}

// DocName is the display name for an uploaded file: the base filename with
// its extension removed.
func DocName(filename string) string {
	name := filename
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
