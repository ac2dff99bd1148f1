package answer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"paperchat/internal/models"
	"paperchat/internal/providers"
)

// FallbackAnswer replaces the model's output whenever answer generation
// fails. The chat flow never surfaces a raw error to the user.
const FallbackAnswer = "I apologize, but I encountered an error while processing your question. This might be due to the document size. Try asking a more specific question or upload fewer documents."

// Engine turns retrieved chunks into grounded answers and documents into
// short summaries through the configured LLM providers.
type Engine struct {
	providers *providers.Manager
}

func NewEngine(m *providers.Manager) *Engine {
	return &Engine{providers: m}
}

// Answer builds the grounded prompt for the question and generates a
// response. The returned text is always usable: on generation failure it
// is FallbackAnswer, and the error carries the cause so callers can skip
// work that depends on a real answer.
func (e *Engine) Answer(ctx context.Context, question string, chunks []models.Chunk) (string, error) {
	prompt := BuildAnswerPrompt(question, BuildContext(chunks))
	text, err := e.Generate(ctx, "answer", prompt)
	if err != nil {
		log.Printf("answer generation failed class=%s: %v", providers.ClassifyError(err), err)
		return FallbackAnswer, err
	}
	return text, nil
}

// Summarize generates a 3-4 sentence summary of a document's full text.
// Unlike Answer it reports failure so ingestion can apply its own
// fallback summary.
func (e *Engine) Summarize(ctx context.Context, fullText string) (string, error) {
	text, err := e.Generate(ctx, "summarize", BuildSummaryPrompt(fullText))
	if err != nil {
		return "", fmt.Errorf("summarize document: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Generate runs one raw generation call, preferring groq when configured
// and otherwise walking the preferred provider order until one succeeds.
func (e *Engine) Generate(ctx context.Context, operation, prompt string) (string, error) {
	req := providers.GenerateRequest{Operation: operation, Prompt: prompt}

	var lastErr error
	if p, ref, ok := e.providers.FindLLMProviderByName("groq"); ok {
		resp, _, err := p.Generate(ctx, req)
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return resp.Text, nil
		}
		if err != nil {
			lastErr = err
			log.Printf("provider %s op=%s class=%s: %v", ref.Name, operation, providers.ClassifyError(err), err)
		}
	}
	for _, idx := range e.providers.PreferredLLMOrder() {
		p, ref := e.providers.LLMProviderByIndex(idx)
		if strings.EqualFold(ref.Name, "groq") {
			continue
		}
		resp, _, err := p.Generate(ctx, req)
		if err != nil {
			lastErr = err
			log.Printf("provider %s op=%s class=%s: %v", ref.Name, operation, providers.ClassifyError(err), err)
			continue
		}
		if strings.TrimSpace(resp.Text) == "" {
			lastErr = fmt.Errorf("provider %s returned empty text", ref.Name)
			continue
		}
		return resp.Text, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no llm provider produced output")
	}
	return "", lastErr
}
