package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"paperchat/internal/util"
)

// buildPDF assembles a minimal single-font PDF with one content stream per
// page. An empty page text produces a page with no text operators.
func buildPDF(pages []string) []byte {
	var buf bytes.Buffer
	count := 3 + 2*len(pages)
	offsets := make([]int, count+1)

	buf.WriteString("%PDF-1.4\n")
	addObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	addObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	addObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(pages)))
	addObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, text := range pages {
		content := "BT ET"
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		addObj(4+2*i, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		addObj(5+2*i, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream",
			len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", count+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= count; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		count+1, xref)
	return buf.Bytes()
}

func TestExtractTextMarksPages(t *testing.T) {
	raw := buildPDF([]string{"first page words", "second page words"})
	text, pages, err := ExtractText(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if pages != 2 {
		t.Fatalf("pages = %d, want 2", pages)
	}
	for _, want := range []string{"--- Page 1 ---", "first page words", "--- Page 2 ---", "second page words"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
	if !strings.Contains(text, "\n\n--- Page 2 ---") {
		t.Fatalf("pages should be joined by a blank line:\n%s", text)
	}
}

func TestExtractTextSkipsEmptyPagesKeepingNumbers(t *testing.T) {
	raw := buildPDF([]string{"opening text", "", "closing text"})
	text, pages, err := ExtractText(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if pages != 2 {
		t.Fatalf("pages = %d, want 2 (blank page skipped)", pages)
	}
	if strings.Contains(text, "--- Page 2 ---") {
		t.Fatalf("blank page should have no marker:\n%s", text)
	}
	if !strings.Contains(text, "--- Page 3 ---") {
		t.Fatalf("third page keeps its own number:\n%s", text)
	}
}

func TestExtractTextAllPagesEmpty(t *testing.T) {
	raw := buildPDF([]string{"", ""})
	_, _, err := ExtractText(bytes.NewReader(raw), int64(len(raw)))
	if !errors.Is(err, util.ErrNoExtractableText) {
		t.Fatalf("err = %v, want ErrNoExtractableText", err)
	}
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	raw := []byte("this is not a pdf at all")
	_, _, err := ExtractText(bytes.NewReader(raw), int64(len(raw)))
	if err == nil {
		t.Fatal("expected an error for non-PDF input")
	}
}

func TestExtractTextTruncatedFileDoesNotPanic(t *testing.T) {
	raw := []byte("%PDF-1.4\ngarbage with no xref")
	_, _, err := ExtractText(bytes.NewReader(raw), int64(len(raw)))
	if err == nil {
		t.Fatal("expected an error for a truncated file")
	}
}

func TestDocName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"attention.pdf", "attention"},
		{"dir/sub/report.v2.pdf", "report.v2"},
		{"noext", "noext"},
		{".hidden", ".hidden"},
	}
	for _, c := range cases {
		if got := DocName(c.in); got != c.want {
			t.Fatalf("DocName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
