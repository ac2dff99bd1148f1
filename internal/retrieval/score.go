package retrieval

import (
	"sort"
	"strings"

	"paperchat/internal/models"
)

// phraseBonus is added when the whole query appears verbatim in a chunk,
// so exact-phrase matches dominate pure word overlap.
const phraseBonus = 10

// ScoreChunks rates every chunk against the query: the score is the number
// of distinct words shared between query and chunk, plus the phrase bonus
// for a contiguous match. Purely lexical; no stemming, no synonyms.
func ScoreChunks(query string, chunks []models.Chunk) []models.ScoredChunk {
	queryLower := strings.ToLower(query)
	queryWords := wordSet(queryLower)

	out := make([]models.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		textLower := strings.ToLower(c.Text)
		textWords := wordSet(textLower)

		score := 0
		for w := range queryWords {
			if _, ok := textWords[w]; ok {
				score++
			}
		}
		if strings.Contains(textLower, queryLower) {
			score += phraseBonus
		}
		out = append(out, models.ScoredChunk{Chunk: c, Score: score})
	}
	return out
}

// Search returns the topK most relevant chunks, highest score first.
// Zero-scored chunks never rank; equal scores keep their input order.
func Search(query string, chunks []models.Chunk, topK int) []models.Chunk {
	scored := ScoreChunks(query, chunks)
	ranked := make([]models.ScoredChunk, 0, len(scored))
	for _, sc := range scored {
		if sc.Score > 0 {
			ranked = append(ranked, sc)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := make([]models.Chunk, 0, len(ranked))
	for _, sc := range ranked {
		out = append(out, sc.Chunk)
	}
	return out
}

func wordSet(lower string) map[string]struct{} {
	fields := strings.Fields(lower)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
