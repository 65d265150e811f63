package summarizer

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"papersumm/internal/domain"
)

const (
	FallbackModel = "fallback"

	fallbackBaselineSentences = 3
	fallbackCoTSentences      = 5
	fallbackMaxChars          = 1200
)

// Fallback returns the leading sentences of the text. It is used when no LLM
// is configured.
type Fallback struct{}

func (Fallback) Summarize(_ context.Context, input Input) (string, error) {
	normalized := strings.Join(strings.Fields(input.Text), " ")
	if normalized == "" {
		return "", errors.New("input is empty")
	}

	count := fallbackBaselineSentences
	if input.Mode == domain.ModeChainOfThought {
		count = fallbackCoTSentences
	}

	summary := strings.Join(leadingSentences(normalized, count), " ")

	runes := []rune(summary)
	if len(runes) > fallbackMaxChars {
		summary = strings.TrimSpace(string(runes[:fallbackMaxChars])) + "..."
	}

	return summary, nil
}

func leadingSentences(text string, count int) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		sentences = append(sentences, strings.TrimSpace(string(runes[start:i+1])))
		start = i + 1
		if len(sentences) == count {
			return sentences
		}
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}
