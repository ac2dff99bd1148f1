package answer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"paperchat/internal/models"
)

const (
	maxContextChars = 12000
	maxChunks       = 6
	maxChunkChars   = 1500
)

// BuildContext renders chunks into numbered source blocks. At most six
// chunks are considered; each chunk's text is truncated to 1,500
// characters with an ellipsis before measuring, and assembly stops the
// moment the running total would exceed the 12,000 character budget.
func BuildContext(chunks []models.Chunk) string {
	if len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}

	parts := make([]string, 0, len(chunks))
	total := 0
	for i, c := range chunks {
		text := c.Text
		if r := []rune(text); len(r) > maxChunkChars {
			text = string(r[:maxChunkChars]) + "..."
		}
		source := c.Source
		if source == "" {
			source = "Document"
		}
		page := c.Page
		if page == "" {
			page = "?"
		}

		block := fmt.Sprintf("[Source %d: %s, Page %s]\n%s\n", i+1, source, page, text)
		if total+utf8.RuneCountInString(block) > maxContextChars {
			break
		}
		parts = append(parts, block)
		total += utf8.RuneCountInString(block)
	}
	return strings.Join(parts, "\n")
}
