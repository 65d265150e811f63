package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"papersumm/internal/summarizer"
)

const queueSize = 1000

type request struct {
	ctx      context.Context
	input    summarizer.Input
	response chan response
}

type response struct {
	summary string
	err     error
}

// RateLimiter spaces the start of upstream summarizer calls by at least
// interval. Calls still run concurrently once started.
type RateLimiter struct {
	next     summarizer.Summarizer
	interval time.Duration
	queue    chan request
	lastSent time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger
}

func New(next summarizer.Summarizer, interval time.Duration, log *slog.Logger) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		next:     next,
		interval: max(interval, 0),
		queue:    make(chan request, queueSize),
		ctx:      ctx,
		cancel:   cancel,
		log:      log,
	}

	go rl.processQueue()

	return rl
}

func (rl *RateLimiter) Summarize(
	ctx context.Context,
	input summarizer.Input,
) (string, error) {
	req := request{
		ctx:      ctx,
		input:    input,
		response: make(chan response, 1),
	}

	if err := rl.ctx.Err(); err != nil {
		return "", err
	}

	select {
	case rl.queue <- req:
	case <-rl.ctx.Done():
		return "", rl.ctx.Err()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case resp := <-req.response:
		return resp.summary, resp.err
	case <-rl.ctx.Done():
		return "", rl.ctx.Err()
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
}

func (rl *RateLimiter) processQueue() {
	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			for {
				select {
				case req := <-rl.queue:
					req.response <- response{err: rl.ctx.Err()}
				default:
					return
				}
			}
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if delay := rl.interval - time.Since(rl.lastSent); delay > 0 {
		rl.log.DebugContext(req.ctx, "Rate limiting summarizer call",
			"delay", delay,
			"mode", req.input.Mode,
			"queueLen", len(rl.queue))

		select {
		case <-time.After(delay):
		case <-req.ctx.Done():
			req.response <- response{err: req.ctx.Err()}

			return
		case <-rl.ctx.Done():
			req.response <- response{err: rl.ctx.Err()}

			return
		}
	}

	rl.lastSent = time.Now()

	go func() {
		summary, err := rl.next.Summarize(req.ctx, req.input)
		req.response <- response{summary: summary, err: err}
	}()
}
