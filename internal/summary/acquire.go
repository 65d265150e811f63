package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"papersumm/internal/domain"
	"papersumm/internal/transport"
)

// Summarizer is the remote summarize endpoint.
type Summarizer interface {
	Summarize(ctx context.Context, req transport.SummarizeRequest) (transport.SummarizeResponse, error)
}

// Acquirer requests single summaries. Every call reaches the remote service;
// nothing is cached.
type Acquirer struct {
	remote Summarizer
	log    *slog.Logger
}

func NewAcquirer(remote Summarizer, log *slog.Logger) *Acquirer {
	return &Acquirer{remote: remote, log: log}
}

func (a *Acquirer) AcquireSummary(
	ctx context.Context,
	text string,
	mode domain.Mode,
	section string,
) (domain.Summary, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Summary{}, &domain.PreconditionError{Reason: "text is empty"}
	}

	resp, err := a.remote.Summarize(ctx, transport.SummarizeRequest{
		Text:        text,
		UseCoT:      mode.UseCoT(),
		SectionName: section,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	summaryText := normalize(resp.Summary)
	if summaryText == "" {
		a.log.WarnContext(ctx, "Summary response carries no text",
			"mode", mode,
			"section", section,
			"rawLen", len(resp.Summary))
	}

	return domain.Summary{Mode: mode, Text: summaryText}, nil
}

// normalize accepts a bare string or an object with a text field and
// resolves anything else to an empty string.
func normalize(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var nested struct {
		Text *string `json:"text"`
	}
	if json.Unmarshal(raw, &nested) == nil && nested.Text != nil {
		return *nested.Text
	}

	return ""
}
