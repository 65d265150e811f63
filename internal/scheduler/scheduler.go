package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	pruneTimeout          = 5 * time.Minute
)

// Pruner removes stored rows created before the cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, int64, error)
}

type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	pruner    Pruner
	retention time.Duration
	spec      string
	now       func() time.Time
	log       *slog.Logger
}

func New(
	ctx context.Context,
	pruner Pruner,
	retention time.Duration,
	spec string,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		pruner:    pruner,
		retention: retention,
		spec:      spec,
		now:       time.Now,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.prune); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) prune() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	if s.retention <= 0 {
		return
	}

	cutoff := s.now().UTC().Add(-s.retention)

	docs, evals, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune stored data",
			"error", err,
			"cutoff", cutoff)
		return
	}

	s.log.InfoContext(ctx, "Stored data is pruned",
		"cutoff", cutoff,
		"documentCount", docs,
		"evaluationCount", evals)
}
