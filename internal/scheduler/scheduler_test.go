package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type stubPruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *stubPruner) PruneBefore(_ context.Context, cutoff time.Time) (int64, int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cutoffs = append(p.cutoffs, cutoff)

	return 1, 2, p.err
}

func (p *stubPruner) calls() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]time.Time(nil), p.cutoffs...)
}

func newTestScheduler(ctx context.Context, pruner Pruner, retention time.Duration) *Scheduler {
	s := New(ctx, pruner, retention, "0 * * * *",
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}

	return s
}

func TestPruneUsesRetentionCutoff(t *testing.T) {
	pruner := &stubPruner{}
	s := newTestScheduler(context.Background(), pruner, 24*time.Hour)

	s.prune()

	cutoffs := pruner.calls()
	if len(cutoffs) != 1 {
		t.Fatalf("unexpected prune calls: %d", len(cutoffs))
	}

	want := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	if !cutoffs[0].Equal(want) {
		t.Fatalf("unexpected cutoff: %v", cutoffs[0])
	}
}

func TestPruneSkipsWithoutRetention(t *testing.T) {
	pruner := &stubPruner{}
	s := newTestScheduler(context.Background(), pruner, 0)

	s.prune()

	if n := len(pruner.calls()); n != 0 {
		t.Fatalf("unexpected prune calls: %d", n)
	}
}

func TestPruneSkipsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pruner := &stubPruner{}
	s := newTestScheduler(ctx, pruner, time.Hour)

	s.prune()

	if n := len(pruner.calls()); n != 0 {
		t.Fatalf("unexpected prune calls: %d", n)
	}
}

func TestPruneToleratesErrors(t *testing.T) {
	pruner := &stubPruner{err: errors.New("disk is full")}
	s := newTestScheduler(context.Background(), pruner, time.Hour)

	s.prune()

	if n := len(pruner.calls()); n != 1 {
		t.Fatalf("unexpected prune calls: %d", n)
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := New(context.Background(), &stubPruner{}, time.Hour, "not a spec",
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected invalid spec error")
	}
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler(context.Background(), &stubPruner{}, time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Stop()
}
