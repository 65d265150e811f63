package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"papersumm/internal/domain"
)

const subscriberBuffer = 16

const (
	actionUpload        = "upload"
	actionGenerate      = "generate"
	actionEvaluate      = "evaluate"
	actionSelectSection = "selectSection"
)

var failureTitles = map[string]string{
	actionUpload:   "Failed to upload or parse document",
	actionGenerate: "Failed to generate summary",
	actionEvaluate: "Failed to evaluate summaries",
}

type Uploader interface {
	Upload(ctx context.Context, file domain.File) (domain.Document, error)
}

type SummaryAcquirer interface {
	AcquireSummary(ctx context.Context, text string, mode domain.Mode, section string) (domain.Summary, error)
}

type Evaluator interface {
	EvaluateBidirectional(ctx context.Context, a domain.Summary, b domain.Summary) (domain.EvaluationRecord, error)
}

// Controller owns the workflow state. Commands block until their action
// settles and never return errors: failures are published as state.
type Controller struct {
	uploader  Uploader
	acquirer  SummaryAcquirer
	evaluator Evaluator
	log       *slog.Logger

	mu          sync.Mutex
	state       State
	epoch       uint64
	subscribers map[uint64]chan State
	nextSubID   uint64
}

// actionInput is what an action captured when it started.
type actionInput struct {
	epoch   uint64
	text    string
	section string
}

func New(
	uploader Uploader,
	acquirer SummaryAcquirer,
	evaluator Evaluator,
	log *slog.Logger,
) *Controller {
	return &Controller{
		uploader:  uploader,
		acquirer:  acquirer,
		evaluator: evaluator,
		log:       log,
		state: State{
			Phase:   PhaseIdle,
			Section: domain.FullSection,
		},
		subscribers: make(map[uint64]chan State),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.clone()
}

// Subscribe returns a channel receiving every published snapshot, starting
// with the current one. A slow reader loses older snapshots, never the latest.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++

	ch := make(chan State, subscriberBuffer)
	ch <- c.state.clone()
	c.subscribers[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
}

// Upload invalidates every derived artifact right away and then uploads file.
// Only the most recent upload is published.
func (c *Controller) Upload(ctx context.Context, file domain.File) {
	c.mu.Lock()
	if len(file.Data) == 0 {
		c.state.Baseline = nil
		c.state.ChainOfThought = nil
		c.state.Evaluation = nil
		c.failLocked(ctx, actionUpload, &domain.PreconditionError{
			Reason: "No file selected. Choose a document to upload.",
		})
		c.mu.Unlock()

		return
	}

	c.epoch++
	epoch := c.epoch

	c.state.Baseline = nil
	c.state.ChainOfThought = nil
	c.state.Evaluation = nil
	c.state.Err = ""
	c.state.Phase = PhaseUploading
	c.publishLocked()
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Upload is started",
		"fileName", file.Name,
		"contentType", file.ContentType,
		"size", len(file.Data))

	doc, err := c.uploader.Upload(ctx, file)

	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		c.log.InfoContext(ctx, "Upload result is discarded",
			"reason", "superseded",
			"fileName", file.Name)

		return
	}

	c.state.Phase = c.state.restingPhase()
	if err != nil {
		c.failLocked(ctx, actionUpload, err)

		return
	}

	c.state.Document = &doc
	c.state.Section = doc.DefaultSection()
	c.state.Phase = PhaseReady
	c.publishLocked()

	c.log.InfoContext(ctx, "Document is uploaded",
		"documentID", doc.ID,
		"sectionCount", len(doc.Sections),
		"section", c.state.Section,
		"textLen", len(doc.Text))
}

// SelectSection changes the section used by later actions only.
func (c *Controller) SelectSection(ctx context.Context, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name = strings.TrimSpace(name)

	doc := domain.Document{}
	if c.state.Document != nil {
		doc = *c.state.Document
	}

	if !doc.HasSection(name) {
		c.log.WarnContext(ctx, "Unknown section is rejected",
			"action", actionSelectSection,
			"section", name,
			"known", doc.Sections)

		c.state.Err = fmt.Sprintf("Unknown section %q.", name)
		c.publishLocked()

		return
	}

	c.state.Section = name
	c.state.Err = ""
	c.publishLocked()
}

// GenerateOne replaces the summary for mode and leaves the other one as is.
func (c *Controller) GenerateOne(ctx context.Context, mode domain.Mode) {
	var modeErr error
	if !mode.Valid() {
		modeErr = &domain.PreconditionError{Reason: fmt.Sprintf("Unknown summary mode %q.", mode)}
	}

	c.mu.Lock()
	in, ok := c.beginLocked(ctx, actionGenerate, PhaseGenerating, modeErr)
	c.mu.Unlock()

	if !ok {
		return
	}

	summary, err := c.acquirer.AcquireSummary(ctx, in.text, mode, in.section)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.settleLocked(ctx, actionGenerate, in) {
		return
	}

	if err != nil {
		c.failLocked(ctx, actionGenerate, err)

		return
	}

	c.state.setSummary(summary)
	// The stored record compared the previous pair.
	c.state.Evaluation = nil
	c.state.Phase = c.state.restingPhase()
	c.publishLocked()

	c.log.InfoContext(ctx, "Summary is generated",
		"mode", mode,
		"section", in.section,
		"summaryLen", len(summary.Text))
}

// Evaluate generates both summaries concurrently, publishes them together and
// then scores them in both directions.
func (c *Controller) Evaluate(ctx context.Context) {
	c.mu.Lock()
	in, ok := c.beginLocked(ctx, actionEvaluate, PhaseGenerating, nil)
	c.mu.Unlock()

	if !ok {
		return
	}

	baseline, cot, err := c.acquireBoth(ctx, in)

	c.mu.Lock()
	if err != nil {
		if c.settleLocked(ctx, actionEvaluate, in) {
			c.failLocked(ctx, actionEvaluate, err)
		}
		c.mu.Unlock()

		return
	}

	if in.epoch != c.epoch {
		c.settleLocked(ctx, actionEvaluate, in)
		c.mu.Unlock()

		return
	}

	c.state.setSummary(baseline)
	c.state.setSummary(cot)
	c.state.Evaluation = nil
	c.state.Phase = PhaseEvaluating
	c.publishLocked()
	c.mu.Unlock()

	record, err := c.evaluator.EvaluateBidirectional(ctx, baseline, cot)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.settleLocked(ctx, actionEvaluate, in) {
		return
	}

	if err != nil {
		c.failLocked(ctx, actionEvaluate, err)

		return
	}

	c.state.Evaluation = &record
	c.state.Phase = c.state.restingPhase()
	c.publishLocked()

	c.log.InfoContext(ctx, "Summaries are evaluated",
		"section", in.section,
		"aVsBRougeL", record.AVsB.Scores.RougeL,
		"bVsARougeL", record.BVsA.Scores.RougeL)
}

func (c *Controller) acquireBoth(
	ctx context.Context,
	in actionInput,
) (domain.Summary, domain.Summary, error) {
	var (
		g             errgroup.Group
		baseline, cot domain.Summary
	)

	g.Go(func() error {
		s, err := c.acquirer.AcquireSummary(ctx, in.text, domain.ModeBaseline, in.section)
		if err != nil {
			return fmt.Errorf("baseline summary: %w", err)
		}
		baseline = s
		return nil
	})

	g.Go(func() error {
		s, err := c.acquirer.AcquireSummary(ctx, in.text, domain.ModeChainOfThought, in.section)
		if err != nil {
			return fmt.Errorf("chain-of-thought summary: %w", err)
		}
		cot = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Summary{}, domain.Summary{}, err
	}

	return baseline, cot, nil
}

// beginLocked marks an action as in flight, or reports why it cannot start.
func (c *Controller) beginLocked(
	ctx context.Context,
	action string,
	phase Phase,
	precondition error,
) (actionInput, bool) {
	if c.state.InFlight || c.state.Phase == PhaseUploading {
		c.log.WarnContext(ctx, "Action is ignored while another one is pending",
			"action", action,
			"phase", c.state.Phase)

		return actionInput{}, false
	}

	if precondition != nil {
		c.failLocked(ctx, action, precondition)

		return actionInput{}, false
	}

	if c.state.Document == nil || strings.TrimSpace(c.state.Document.Text) == "" {
		c.failLocked(ctx, action, &domain.PreconditionError{
			Reason: "No text available. Upload and parse a document first.",
		})

		return actionInput{}, false
	}

	c.state.InFlight = true
	c.state.Phase = phase
	c.state.Err = ""
	c.publishLocked()

	return actionInput{
		epoch:   c.epoch,
		text:    c.state.Document.Text,
		section: c.state.Section,
	}, true
}

// settleLocked clears the in-flight flag. It returns false, after publishing,
// when a newer upload replaced the document the action worked on.
func (c *Controller) settleLocked(ctx context.Context, action string, in actionInput) bool {
	c.state.InFlight = false
	if in.epoch == c.epoch {
		return true
	}

	c.log.InfoContext(ctx, "Action result is discarded",
		"action", action,
		"reason", "document replaced")
	c.publishLocked()

	return false
}

// failLocked surfaces err. When nothing else is pending the phase passes
// through PhaseError and settles back to its resting phase.
func (c *Controller) failLocked(ctx context.Context, action string, err error) {
	c.log.ErrorContext(ctx, "Action failed",
		"action", action,
		"error", err)

	c.state.Err = errorMessage(action, err)

	if c.state.InFlight || c.state.Phase == PhaseUploading {
		c.publishLocked()

		return
	}

	c.state.Phase = PhaseError
	c.publishLocked()

	c.state.Phase = c.state.restingPhase()
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	c.state.Version++
	snapshot := c.state.clone()

	for _, ch := range c.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func errorMessage(action string, err error) string {
	var precondition *domain.PreconditionError
	if errors.As(err, &precondition) {
		return precondition.Reason
	}

	title, ok := failureTitles[action]
	if !ok {
		return err.Error()
	}

	return title + ": " + err.Error()
}
