package evaluation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"papersumm/internal/domain"
	"papersumm/internal/transport"
)

type stubScorer struct {
	mu       sync.Mutex
	requests []transport.EvaluateRequest
	scores   map[string]domain.Scores
	errs     map[string]error
	// barrier, when set, holds every call until all expected calls have started.
	barrier *sync.WaitGroup
}

func (s *stubScorer) Evaluate(
	_ context.Context,
	req transport.EvaluateRequest,
) (domain.Scores, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.barrier != nil {
		s.barrier.Done()
		s.barrier.Wait()
	}

	if err := s.errs[req.Label]; err != nil {
		return domain.Scores{}, err
	}

	return s.scores[req.Label], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	summaryA = domain.Summary{Mode: domain.ModeBaseline, Text: "A"}
	summaryB = domain.Summary{Mode: domain.ModeChainOfThought, Text: "B"}
)

func TestEvaluateBidirectionalPreservesBothDirections(t *testing.T) {
	aVsB := domain.Scores{Rouge1: 0.1, Rouge2: 0.2, RougeL: 0.3, BLEU: 4}
	bVsA := domain.Scores{Rouge1: 0.5, Rouge2: 0.6, RougeL: 0.7, BLEU: 8}
	stub := &stubScorer{scores: map[string]domain.Scores{
		domain.LabelAVsB: aVsB,
		domain.LabelBVsA: bVsA,
	}}

	record, err := NewOrchestrator(stub, discardLogger()).
		EvaluateBidirectional(context.Background(), summaryA, summaryB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.AVsB.Label != domain.LabelAVsB || record.AVsB.Scores != aVsB {
		t.Fatalf("unexpected A_vs_B: %+v", record.AVsB)
	}
	if record.BVsA.Label != domain.LabelBVsA || record.BVsA.Scores != bVsA {
		t.Fatalf("unexpected B_vs_A: %+v", record.BVsA)
	}

	for _, req := range stub.requests {
		switch req.Label {
		case domain.LabelAVsB:
			if req.SystemSummary != "A" || req.ReferenceSummary != "B" {
				t.Fatalf("unexpected A_vs_B request: %+v", req)
			}
		case domain.LabelBVsA:
			if req.SystemSummary != "B" || req.ReferenceSummary != "A" {
				t.Fatalf("unexpected B_vs_A request: %+v", req)
			}
		default:
			t.Fatalf("unexpected label: %q", req.Label)
		}
	}
	if len(stub.requests) != 2 {
		t.Fatalf("expected exactly two requests, got %d", len(stub.requests))
	}
}

func TestEvaluateBidirectionalIssuesRequestsConcurrently(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	stub := &stubScorer{barrier: &barrier}

	done := make(chan error, 1)
	go func() {
		_, err := NewOrchestrator(stub, discardLogger()).
			EvaluateBidirectional(context.Background(), summaryA, summaryB)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("requests were not in flight at the same time")
	}
}

func TestEvaluateBidirectionalFailsWhenOneDirectionFails(t *testing.T) {
	boom := &domain.TransportError{Endpoint: transport.EndpointEvaluate, Cause: errors.New("boom")}
	stub := &stubScorer{
		scores: map[string]domain.Scores{domain.LabelAVsB: {Rouge1: 1}},
		errs:   map[string]error{domain.LabelBVsA: boom},
	}

	record, err := NewOrchestrator(stub, discardLogger()).
		EvaluateBidirectional(context.Background(), summaryA, summaryB)

	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if record != (domain.EvaluationRecord{}) {
		t.Fatalf("expected no partial record, got %+v", record)
	}
	if len(stub.requests) != 2 {
		t.Fatalf("expected both requests to be issued, got %d", len(stub.requests))
	}
}
