package citations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"paperchat/internal/models"
)

type stubGenerator struct {
	text string
	err  error

	lastOperation string
	lastPrompt    string
}

func (s *stubGenerator) Generate(_ context.Context, operation, prompt string) (string, error) {
	s.lastOperation = operation
	s.lastPrompt = prompt
	return s.text, s.err
}

func TestBuildIncludesBibliographyAndRelated(t *testing.T) {
	gen := &stubGenerator{text: "• **[Paper One]** (2023)\n  Why: relevant."}
	b := NewBuilder(gen)
	docs := []models.Document{{
		Filename: "a.pdf",
		Text:     "References\nSmith, J. (2020). A Study. Journal.\n",
		Summary:  "A study of things.",
	}}

	out := b.Build(context.Background(), docs)
	if !strings.Contains(out, referencesLabel) {
		t.Fatalf("missing bibliography label:\n%s", out)
	}
	if !strings.Contains(out, "1. Smith, J. (2020). A Study.") {
		t.Fatalf("missing numbered entry:\n%s", out)
	}
	if !strings.Contains(out, relatedLabel) {
		t.Fatalf("missing related label:\n%s", out)
	}
	if !strings.Contains(out, "Paper One") {
		t.Fatalf("missing generated related text:\n%s", out)
	}
	if gen.lastOperation != "related_papers" {
		t.Fatalf("unexpected operation: %q", gen.lastOperation)
	}
}

func TestBuildOmitsBibliographyWhenNoneFound(t *testing.T) {
	gen := &stubGenerator{text: "suggestions"}
	b := NewBuilder(gen)
	docs := []models.Document{{Filename: "a.pdf", Text: "no reference section", Summary: "s"}}

	out := b.Build(context.Background(), docs)
	if strings.Contains(out, referencesLabel) {
		t.Fatalf("bibliography block should be absent:\n%s", out)
	}
	if !strings.HasPrefix(out, relatedLabel) {
		t.Fatalf("related block should lead the output:\n%s", out)
	}
}

func TestBuildSubstitutesOnGenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider down")}
	b := NewBuilder(gen)

	out := b.Build(context.Background(), []models.Document{{Filename: "a.pdf", Summary: "s"}})
	if !strings.Contains(out, "Could not generate related papers: provider down") {
		t.Fatalf("missing failure substitute:\n%s", out)
	}
}

func TestBuildRelatedPromptUsesAtMostThreeSummaries(t *testing.T) {
	docs := []models.Document{
		{Summary: "first"},
		{Summary: "second"},
		{Summary: "third"},
		{Summary: "fourth"},
	}
	prompt := BuildRelatedPrompt(docs)
	for _, want := range []string{"- first", "- second", "- third"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "fourth") {
		t.Fatalf("prompt should not include a fourth summary:\n%s", prompt)
	}
}
