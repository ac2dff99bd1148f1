package answer

import "fmt"

const answerPromptTemplate = `You are an expert research assistant analyzing academic papers. Answer the user's question based ONLY on the provided context.

CONTEXT FROM UPLOADED DOCUMENTS:
%s

USER QUESTION: %s

INSTRUCTIONS:
1. Provide a clear, comprehensive answer based on the context
2. Use inline citations like [Source 1], [Source 2] when referencing specific information
3. If the answer requires information from multiple sources, cite all relevant sources
4. If the context doesn't contain enough information, say so clearly
5. Be precise and academic in your tone

ANSWER:`

// BuildAnswerPrompt renders the grounded instruction prompt. The bracketed
// [Source N] citation shape is load-bearing: the citation post-processing
// matches on it.
func BuildAnswerPrompt(question, contextText string) string {
	return fmt.Sprintf(answerPromptTemplate, contextText, question)
}

const summaryPromptTemplate = `Analyze this research document and provide a concise 3-4 sentence summary.

Focus on:
- Main research topic and field
- Key methodology or approach
- Primary findings or contributions

DOCUMENT TEXT:
%s

SUMMARY (3-4 sentences only):`

const (
	summarizeMaxChars = 20000
	elisionMarker     = "\n\n[...]\n\n"
)

func BuildSummaryPrompt(fullText string) string {
	return fmt.Sprintf(summaryPromptTemplate, reduceForSummary(fullText))
}

// reduceForSummary keeps the head and tail of oversized documents so the
// summarization input stays bounded regardless of document length.
func reduceForSummary(text string) string {
	runes := []rune(text)
	if len(runes) <= summarizeMaxChars {
		return text
	}
	half := summarizeMaxChars / 2
	return string(runes[:half]) + elisionMarker + string(runes[len(runes)-half:])
}
