package workflow_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"papersumm/internal/domain"
	"papersumm/internal/evaluation"
	"papersumm/internal/summary"
	"papersumm/internal/transport"
	"papersumm/internal/workflow"
)

// fakeRemote stands in for the upload, summarize and evaluate endpoints.
type fakeRemote struct {
	mu         sync.Mutex
	delay      time.Duration
	summarized []transport.SummarizeRequest
	evaluated  []transport.EvaluateRequest
}

func (f *fakeRemote) Upload(_ context.Context, _ domain.File) (domain.Document, error) {
	return domain.Document{
		ID:       "doc-1",
		Text:     "Lorem ipsum",
		Sections: []string{"Abstract", "Intro"},
	}, nil
}

func (f *fakeRemote) Summarize(
	_ context.Context,
	req transport.SummarizeRequest,
) (transport.SummarizeResponse, error) {
	f.mu.Lock()
	f.summarized = append(f.summarized, req)
	f.mu.Unlock()

	time.Sleep(f.delay)

	if req.UseCoT {
		return transport.SummarizeResponse{Summary: json.RawMessage(`{"text":"B"}`)}, nil
	}
	return transport.SummarizeResponse{Summary: json.RawMessage(`"A"`)}, nil
}

func (f *fakeRemote) Evaluate(
	_ context.Context,
	req transport.EvaluateRequest,
) (domain.Scores, error) {
	f.mu.Lock()
	f.evaluated = append(f.evaluated, req)
	f.mu.Unlock()

	if req.Label == domain.LabelAVsB {
		return domain.Scores{Rouge1: 0.11, Rouge2: 0.12, RougeL: 0.13, BLEU: 1.4}, nil
	}
	return domain.Scores{Rouge1: 0.21, Rouge2: 0.22, RougeL: 0.23, BLEU: 2.4}, nil
}

func newController(remote *fakeRemote) *workflow.Controller {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return workflow.New(
		remote,
		summary.NewAcquirer(remote, log),
		evaluation.NewOrchestrator(remote, log),
		log,
	)
}

func TestEvaluateScenario(t *testing.T) {
	remote := &fakeRemote{}
	c := newController(remote)
	ctx := context.Background()

	c.Upload(ctx, domain.File{Name: "paper.txt", Data: []byte("Lorem ipsum")})
	c.SelectSection(ctx, "Abstract")
	c.Evaluate(ctx)

	st := c.State()
	if st.Err != "" {
		t.Fatalf("unexpected error: %q", st.Err)
	}
	if st.Baseline.Text != "A" || st.ChainOfThought.Text != "B" {
		t.Fatalf("unexpected summaries: %q / %q", st.Baseline.Text, st.ChainOfThought.Text)
	}

	wantAVsB := domain.Scores{Rouge1: 0.11, Rouge2: 0.12, RougeL: 0.13, BLEU: 1.4}
	wantBVsA := domain.Scores{Rouge1: 0.21, Rouge2: 0.22, RougeL: 0.23, BLEU: 2.4}
	if st.Evaluation.AVsB.Label != domain.LabelAVsB || st.Evaluation.AVsB.Scores != wantAVsB {
		t.Fatalf("unexpected A_vs_B: %+v", st.Evaluation.AVsB)
	}
	if st.Evaluation.BVsA.Label != domain.LabelBVsA || st.Evaluation.BVsA.Scores != wantBVsA {
		t.Fatalf("unexpected B_vs_A: %+v", st.Evaluation.BVsA)
	}

	for _, req := range remote.summarized {
		if req.Text != "Lorem ipsum" || req.SectionName != "Abstract" {
			t.Fatalf("unexpected summarize request: %+v", req)
		}
	}
	for _, req := range remote.evaluated {
		if req.Label == domain.LabelAVsB && (req.SystemSummary != "A" || req.ReferenceSummary != "B") {
			t.Fatalf("unexpected A_vs_B request: %+v", req)
		}
		if req.Label == domain.LabelBVsA && (req.SystemSummary != "B" || req.ReferenceSummary != "A") {
			t.Fatalf("unexpected B_vs_A request: %+v", req)
		}
	}
}

func TestEvaluateLatencyIsBoundedByTheSlowestCall(t *testing.T) {
	const delay = 300 * time.Millisecond

	remote := &fakeRemote{delay: delay}
	c := newController(remote)
	ctx := context.Background()

	c.Upload(ctx, domain.File{Name: "paper.txt", Data: []byte("Lorem ipsum")})

	start := time.Now()
	c.Evaluate(ctx)
	elapsed := time.Since(start)

	if elapsed >= 2*delay {
		t.Fatalf("expected concurrent acquisitions, took %s for two %s calls", elapsed, delay)
	}
	if c.State().Evaluation == nil {
		t.Fatalf("expected evaluation record")
	}
}
