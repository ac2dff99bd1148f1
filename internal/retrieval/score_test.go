package retrieval

import (
	"testing"

	"paperchat/internal/models"
)

func TestScoreChunksOverlapAndPhraseBonus(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "this paper introduces a novel transformer architecture for deep learning", Page: "1", Source: "a.pdf"},
		{Text: "unrelated discussion of biology", Page: "2", Source: "a.pdf"},
	}
	scored := ScoreChunks("transformer architecture", chunks)
	if len(scored) != 2 {
		t.Fatalf("expected 2 scored chunks, got %d", len(scored))
	}
	if scored[0].Score != 12 {
		t.Fatalf("expected overlap 2 plus bonus 10, got %d", scored[0].Score)
	}
	if scored[1].Score != 0 {
		t.Fatalf("expected zero score for unrelated chunk, got %d", scored[1].Score)
	}
}

func TestScoreChunksNoBonusWithoutContiguousMatch(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "deep networks enable learning at scale", Page: "1", Source: "a.pdf"},
	}
	scored := ScoreChunks("deep learning", chunks)
	if scored[0].Score != 2 {
		t.Fatalf("expected word overlap only, got %d", scored[0].Score)
	}
}

func TestScoreChunksCaseInsensitive(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "Transformer Architecture overview", Page: "1", Source: "a.pdf"},
	}
	scored := ScoreChunks("TRANSFORMER architecture", chunks)
	if scored[0].Score != 12 {
		t.Fatalf("expected case-insensitive match with bonus, got %d", scored[0].Score)
	}
}

func TestSearchExcludesZeroScores(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "nothing matching here", Page: "1", Source: "a.pdf"},
		{Text: "graph neural networks for molecules", Page: "2", Source: "a.pdf"},
	}
	got := Search("graph networks", chunks, 6)
	if len(got) != 1 {
		t.Fatalf("expected 1 ranked chunk, got %d", len(got))
	}
	if got[0].Page != "2" {
		t.Fatalf("expected the matching chunk, got page %q", got[0].Page)
	}
}

func TestSearchStableTieOrder(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "alpha result one", Page: "1", Source: "a.pdf"},
		{Text: "alpha result two", Page: "2", Source: "a.pdf"},
		{Text: "alpha result three", Page: "3", Source: "a.pdf"},
	}
	got := Search("alpha result", chunks, 2)
	if len(got) != 2 {
		t.Fatalf("expected topK cap of 2, got %d", len(got))
	}
	if got[0].Page != "1" || got[1].Page != "2" {
		t.Fatalf("expected tie to preserve input order, got pages %q, %q", got[0].Page, got[1].Page)
	}
}

func TestSearchRanksHigherScoreFirst(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "mentions retrieval once", Page: "1", Source: "a.pdf"},
		{Text: "lexical retrieval and ranking of retrieval candidates", Page: "2", Source: "a.pdf"},
	}
	got := Search("lexical retrieval ranking", chunks, 6)
	if len(got) != 2 {
		t.Fatalf("expected 2 ranked chunks, got %d", len(got))
	}
	if got[0].Page != "2" {
		t.Fatalf("expected richer chunk first, got page %q", got[0].Page)
	}
}
