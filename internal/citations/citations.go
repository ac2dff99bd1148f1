// Package citations turns a user's documents and a generated answer into
// the citations block shown alongside it: a bibliography extracted from
// the source texts plus model-suggested related papers.
package citations

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"paperchat/internal/models"
)

const (
	referencesLabel = "References from Paper:"
	relatedLabel    = "Related Research Papers:"
)

// Generator is the text-generation capability the builder depends on.
type Generator interface {
	Generate(ctx context.Context, operation, prompt string) (string, error)
}

type Builder struct {
	gen Generator
}

func NewBuilder(gen Generator) *Builder {
	return &Builder{gen: gen}
}

// Build combines the extracted bibliography with model-suggested related
// papers. The two halves are independent, so they run concurrently; neither
// propagates an error. The bibliography block appears only when non-empty;
// the related-papers block is always present.
func (b *Builder) Build(ctx context.Context, docs []models.Document) string {
	var (
		refs    []string
		related string
	)
	var g errgroup.Group
	g.Go(func() error {
		refs = CollectReferences(docs)
		return nil
	})
	g.Go(func() error {
		related = b.GenerateRelated(ctx, docs)
		return nil
	})
	_ = g.Wait()

	var sb strings.Builder
	if len(refs) > 0 {
		sb.WriteString(referencesLabel + "\n")
		for i, r := range refs {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(relatedLabel + "\n")
	sb.WriteString(related)
	return sb.String()
}

// GenerateRelated asks the model for five plausible related papers based on
// the documents' summaries. On failure it returns an explanatory string in
// place of the suggestions, never an error.
func (b *Builder) GenerateRelated(ctx context.Context, docs []models.Document) string {
	text, err := b.gen.Generate(ctx, "related_papers", BuildRelatedPrompt(docs))
	if err != nil {
		log.Printf("related papers generation failed: %v", err)
		return fmt.Sprintf("Could not generate related papers: %v", err)
	}
	return strings.TrimSpace(text)
}
