// Package service wires retrieval, answer generation, and citation
// building into the operations the API exposes.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"paperchat/internal/answer"
	"paperchat/internal/citations"
	"paperchat/internal/models"
	"paperchat/internal/retrieval"
)

type Service struct {
	engine    *answer.Engine
	citations *citations.Builder
}

func New(engine *answer.Engine, cb *citations.Builder) *Service {
	return &Service{engine: engine, citations: cb}
}

// AnswerQuery runs the full pipeline for one question: retrieve the most
// relevant chunks across the user's documents, generate a grounded answer,
// and build the citations block. It never returns an error; a failed
// generation degrades to the fixed apology answer with an empty citations
// block.
func (s *Service) AnswerQuery(ctx context.Context, query string, docs []models.Document) (answerText, citationsBlock string) {
	chunks := retrieval.Retrieve(query, docs, retrieval.DefaultTopK)
	text, err := s.engine.Answer(ctx, query, chunks)
	if err != nil {
		return text, ""
	}
	return text, s.citations.Build(ctx, docs)
}

// IngestDocument computes the values stored alongside a freshly extracted
// document: a rough paragraph-count chunk estimate and a model-written
// summary. A failed summary falls back to the document's opening text.
func (s *Service) IngestDocument(ctx context.Context, rawText, filename string) (chunkCount int, summary string) {
	chunkCount = len(strings.Split(rawText, "\n\n"))

	summary, err := s.engine.Summarize(ctx, rawText)
	if err != nil {
		log.Printf("summary generation failed for %s: %v", filename, err)
		summary = fallbackSummary(filename, rawText)
	}
	return chunkCount, summary
}

func fallbackSummary(filename, text string) string {
	r := []rune(text)
	if len(r) > 300 {
		r = r[:300]
	}
	return fmt.Sprintf("Document: %s. %s...", filename, string(r))
}
