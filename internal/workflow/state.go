package workflow

import (
	"slices"

	"papersumm/internal/domain"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseUploading  Phase = "uploading"
	PhaseReady      Phase = "ready"
	PhaseGenerating Phase = "generating"
	PhaseEvaluating Phase = "evaluating"
	PhaseError      Phase = "error"
)

// State is an immutable snapshot of the workflow as seen by observers.
type State struct {
	Version        uint64
	Phase          Phase
	Document       *domain.Document
	Section        string
	Baseline       *domain.Summary
	ChainOfThought *domain.Summary
	Evaluation     *domain.EvaluationRecord
	InFlight       bool
	Err            string
}

// Summary returns the stored summary for mode, or nil.
func (s State) Summary(mode domain.Mode) *domain.Summary {
	switch mode {
	case domain.ModeBaseline:
		return s.Baseline
	case domain.ModeChainOfThought:
		return s.ChainOfThought
	default:
		return nil
	}
}

func (s State) clone() State {
	out := s

	if s.Document != nil {
		doc := *s.Document
		doc.Sections = slices.Clone(s.Document.Sections)
		out.Document = &doc
	}
	if s.Baseline != nil {
		baseline := *s.Baseline
		out.Baseline = &baseline
	}
	if s.ChainOfThought != nil {
		cot := *s.ChainOfThought
		out.ChainOfThought = &cot
	}
	if s.Evaluation != nil {
		record := *s.Evaluation
		out.Evaluation = &record
	}

	return out
}

func (s *State) setSummary(summary domain.Summary) {
	switch summary.Mode {
	case domain.ModeBaseline:
		s.Baseline = &summary
	case domain.ModeChainOfThought:
		s.ChainOfThought = &summary
	}
}

// restingPhase is where the workflow settles once no action is pending.
func (s *State) restingPhase() Phase {
	if s.Document == nil {
		return PhaseIdle
	}
	return PhaseReady
}
