package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"papersumm/internal/domain"
	"papersumm/internal/transport"
)

// Scorer is the remote evaluate endpoint.
type Scorer interface {
	Evaluate(ctx context.Context, req transport.EvaluateRequest) (domain.Scores, error)
}

type Orchestrator struct {
	remote Scorer
	log    *slog.Logger
}

func NewOrchestrator(remote Scorer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{remote: remote, log: log}
}

// EvaluateBidirectional scores a against b and b against a concurrently. The
// record is returned only when both directions succeed; the sibling request
// is never cancelled.
func (o *Orchestrator) EvaluateBidirectional(
	ctx context.Context,
	a domain.Summary,
	b domain.Summary,
) (domain.EvaluationRecord, error) {
	var (
		g          errgroup.Group
		aVsB, bVsA domain.Scores
	)

	start := time.Now()

	g.Go(func() error {
		scores, err := o.remote.Evaluate(ctx, transport.EvaluateRequest{
			SystemSummary:    a.Text,
			ReferenceSummary: b.Text,
			Label:            domain.LabelAVsB,
		})
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", domain.LabelAVsB, err)
		}
		aVsB = scores
		return nil
	})

	g.Go(func() error {
		scores, err := o.remote.Evaluate(ctx, transport.EvaluateRequest{
			SystemSummary:    b.Text,
			ReferenceSummary: a.Text,
			Label:            domain.LabelBVsA,
		})
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", domain.LabelBVsA, err)
		}
		bVsA = scores
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.EvaluationRecord{}, err
	}

	o.log.DebugContext(ctx, "Bidirectional evaluation is done",
		"elapsed", time.Since(start))

	return domain.EvaluationRecord{
		AVsB: domain.DirectionalScores{Label: domain.LabelAVsB, Scores: aVsB},
		BVsA: domain.DirectionalScores{Label: domain.LabelBVsA, Scores: bVsA},
	}, nil
}
