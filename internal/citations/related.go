package citations

import (
	"fmt"
	"strings"

	"paperchat/internal/models"
)

const maxSummaryDocs = 3

const relatedPromptTemplate = `You are an academic research assistant. Based on the following research papers, suggest 5 highly relevant academic papers.

UPLOADED PAPERS SUMMARY:
%s

Generate 5 related papers in this EXACT format (use bullet points with •):

• **[Paper Title 1]** by Author1, Author2 et al. (2023)
  Research area and brief relevance explanation in one line.

• **[Paper Title 2]** by Author1, Author2 (2022)
  Research area and brief relevance explanation in one line.

REQUIREMENTS:
- Use bullet point (•) for each paper
- Make titles realistic and academic
- Years between 2019-2025
- Keep each description to ONE line only
- No extra formatting or sections

Generate exactly 5 papers with bullet points:`

// BuildRelatedPrompt renders the related-paper request from at most the
// first three documents' stored summaries.
func BuildRelatedPrompt(docs []models.Document) string {
	lines := make([]string, 0, maxSummaryDocs)
	for _, d := range docs {
		if len(lines) == maxSummaryDocs {
			break
		}
		lines = append(lines, "- "+d.Summary)
	}
	return fmt.Sprintf(relatedPromptTemplate, strings.Join(lines, "\n"))
}
