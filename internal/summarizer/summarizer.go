package summarizer

import (
	"context"

	"papersumm/internal/domain"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the document text to summarise.
	Text string
	// Section is an optional section name used as a hint in the prompt.
	Section string
	// Mode selects the baseline or the chain-of-thought prompt.
	Mode domain.Mode
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
