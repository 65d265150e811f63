package summarizer

import (
	"fmt"
	"strings"

	"papersumm/internal/domain"
)

const (
	baselineMaxOutputTokens int64 = 600
	cotMaxOutputTokens      int64 = 900
	limitMaxOutputTokens    int64 = 2048

	temperature = 0.3
)

const baselinePromptTemplate = `You are an expert research assistant.

Summarize the following research paper text%s clearly and concisely.
Focus on the key ideas, contributions, and main findings.

Text:
%s`

const cotPromptTemplate = `You are an expert research assistant using Chain-of-Thought reasoning.

TASK: Analyze the provided text%s. Your total response must not exceed 500 words and contains no markdown formatting. Separate sections by headings (ALL CAPS) and empty lines.

INSTRUCTIONS:
First extract the citation of the paper in IEEE format. Then provide a detailed reasoning trace.
1. Conduct a step-by-step analysis. Think about:
   - The core topic, claim, or contribution.
   - The key evidence, methods, or arguments used.
   - The strengths and any limitations or assumptions.
   - The broader context and implications.
2. Produce a final, concise summary that synthesizes your analysis.

Structure your final output as follows:

CITATION (IEEE FORMAT)
[Extracted citation]

REASONING TRACE
[Your step-by-step analysis]

FINAL SUMMARY
[A coherent, 3-4 sentence summary integrating your key findings]

Text:
%s

Begin. Remember the 500-word limit for your entire response.`

func buildPrompt(input Input) (string, int64) {
	sectionInfo := ""
	if section := strings.TrimSpace(input.Section); section != "" {
		sectionInfo = fmt.Sprintf(" for the %s section", section)
	}

	text := strings.TrimSpace(input.Text)

	if input.Mode == domain.ModeChainOfThought {
		return fmt.Sprintf(cotPromptTemplate, sectionInfo, text), cotMaxOutputTokens
	}

	return fmt.Sprintf(baselinePromptTemplate, sectionInfo, text), baselineMaxOutputTokens
}
