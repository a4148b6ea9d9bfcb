package pipeline

import (
	"fmt"
	"strings"

	"github.com/podscribe/podscribe/internal/retrieval"
)

func analysisPrompt(segment string) string {
	return fmt.Sprintf(`Analyze this podcast segment and provide both a summary and key insights:

Segment:
%s

Please provide:
1. A concise summary of the main points
2. 3-5 key insights as bullet points that:
   - Identify core themes
   - Extract important information
   - Explain why it matters

Format your response as:
**Summary**:
[your summary here]

**Key Insights**:
• [insight 1]
• [insight 2]
• [insight 3]`, segment)
}

func summaryPrompt(text string) string {
	return fmt.Sprintf(`Summarize this text concisely while preserving key information:
%s
`, text)
}

func chatPrompt(question string, hits []retrieval.Result) string {
	var b strings.Builder
	b.WriteString("You are answering a question about a podcast episode.\n\n")
	b.WriteString("Relevant excerpts from the transcript:\n\n")
	for _, h := range hits {
		b.WriteString(h.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer using only the excerpts above. If they do not contain the answer, say so.")
	return b.String()
}
