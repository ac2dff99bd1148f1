package providers

import (
	"context"
	"strings"
)

// MockProvider returns deterministic text keyed on the request operation.
// It is the default provider when none are configured and the one tests use.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	op := strings.ToLower(req.Operation)
	text := "Mock response."
	switch {
	case strings.Contains(op, "answer"):
		text = "Based on the provided context, the documents address the question directly [Source 1]. Supporting detail appears in the same material [Source 2]."
	case strings.Contains(op, "summar"):
		text = "This document presents a focused study of its stated research topic. The authors describe their methodology and the data involved. Key findings and their implications are reported. Limitations and future directions are briefly discussed."
	case strings.Contains(op, "related"):
		text = strings.Join([]string{
			`• "Grounded Question Answering over Scientific Text" by Chen, L. & Okafor, T. (2021) - Extends the retrieval approach used in the uploaded papers.`,
			`• "Lexical Retrieval Baselines Revisited" by Martinez, P. (2020) - Benchmarks keyword-overlap ranking against learned retrievers.`,
			`• "Citation-Aware Summarization of Research Papers" by Huang, W. et al. (2022) - Studies summaries that preserve source attribution.`,
			`• "Context Budgeting for Long-Document Prompting" by Andersson, K. (2023) - Analyzes truncation policies for bounded prompts.`,
			`• "Reference Mining from Camera-Ready PDFs" by Osei, D. & Lim, J. (2024) - Extracts bibliographies from extracted PDF text.`,
		}, "\n")
	}
	return GenerateResponse{Text: text}, ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}, nil
}
