package retrieval

import "paperchat/internal/models"

// DefaultTopK is the number of chunks retrieved per query when the caller
// does not specify one.
const DefaultTopK = 6

const (
	placeholderText   = "No document content available."
	placeholderPage   = "0"
	placeholderSource = "System"
)

// Retrieve derives chunks from every document with text, ranks them
// against the query, and returns at most topK of them. The result is
// never empty: an empty chunk pool yields a single synthetic placeholder
// chunk, and a query with no positive-scoring chunk falls back to the
// first topK chunks in original order.
func Retrieve(query string, docs []models.Document, topK int) []models.Chunk {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var pool []models.Chunk
	for _, d := range docs {
		if d.Text == "" {
			continue
		}
		pool = append(pool, ExtractChunks(d.Text, d.Filename)...)
	}
	if len(pool) == 0 {
		return []models.Chunk{{Text: placeholderText, Page: placeholderPage, Source: placeholderSource}}
	}

	ranked := Search(query, pool, topK)
	if len(ranked) == 0 {
		if len(pool) > topK {
			pool = pool[:topK]
		}
		return pool
	}
	return ranked
}
