package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"papersumm/internal/config"
	"papersumm/internal/domain"
	"papersumm/internal/evaluation"
	"papersumm/internal/summary"
	"papersumm/internal/transport"
	"papersumm/internal/workflow"
)

const modeEvaluate = "evaluate"

type report struct {
	Version        uint64                   `json:"version"`
	Phase          workflow.Phase           `json:"phase"`
	DocumentID     string                   `json:"documentId,omitempty"`
	Sections       []string                 `json:"sections,omitempty"`
	Section        string                   `json:"section,omitempty"`
	Baseline       *domain.Summary          `json:"baseline,omitempty"`
	ChainOfThought *domain.Summary          `json:"chainOfThought,omitempty"`
	Evaluation     *domain.EvaluationRecord `json:"evaluation,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flagFile    string
		flagSection string
		flagMode    string
	)

	flag.StringVar(&flagFile, "file", "", "document to upload (plain text, markdown or HTML)")
	flag.StringVar(&flagSection, "section", "", "section to summarize (defaults to the first detected one)")
	flag.StringVar(&flagMode, "mode", modeEvaluate, "evaluate, baseline or cot")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s -file paper.txt [-section abstract] [-mode evaluate|baseline|cot]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagFile == "" {
		log.ErrorContext(ctx, "File is required",
			"flag", "file")

		return 2
	}

	if flagMode != modeEvaluate && !domain.Mode(flagMode).Valid() {
		log.ErrorContext(ctx, "Mode is unknown",
			"mode", flagMode)

		return 2
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return 1
	}

	data, err := os.ReadFile(flagFile)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read file",
			"error", err,
			"file", flagFile)

		return 1
	}

	client := transport.NewClient(cfg.ServerURL, cfg.RequestTimeout, log)
	ctrl := workflow.New(
		client,
		summary.NewAcquirer(client, log),
		evaluation.NewOrchestrator(client, log),
		log,
	)

	states, unsubscribe := ctrl.Subscribe()

	var wg sync.WaitGroup
	wg.Go(func() {
		for s := range states {
			log.InfoContext(ctx, "State is published",
				"version", s.Version,
				"phase", s.Phase,
				"section", s.Section,
				"inFlight", s.InFlight,
				"hasBaseline", s.Baseline != nil,
				"hasChainOfThought", s.ChainOfThought != nil,
				"hasEvaluation", s.Evaluation != nil,
				"error", s.Err)
		}
	})

	final := drive(ctx, ctrl, domain.File{
		Name:        filepath.Base(flagFile),
		ContentType: mime.TypeByExtension(filepath.Ext(flagFile)),
		Data:        data,
	}, flagSection, flagMode)

	unsubscribe()
	wg.Wait()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(toReport(final)); err != nil {
		log.ErrorContext(ctx, "Failed to print state",
			"error", err)

		return 1
	}

	if final.Err != "" {
		return 1
	}

	return 0
}

// drive issues the commands in order and stops at the first failure.
func drive(ctx context.Context, ctrl *workflow.Controller, file domain.File, section string, mode string) workflow.State {
	ctrl.Upload(ctx, file)
	if s := ctrl.State(); s.Err != "" {
		return s
	}

	if section != "" {
		ctrl.SelectSection(ctx, section)
		if s := ctrl.State(); s.Err != "" {
			return s
		}
	}

	if mode == modeEvaluate {
		ctrl.Evaluate(ctx)
	} else {
		ctrl.GenerateOne(ctx, domain.Mode(mode))
	}

	return ctrl.State()
}

func toReport(s workflow.State) report {
	r := report{
		Version:        s.Version,
		Phase:          s.Phase,
		Section:        s.Section,
		Baseline:       s.Baseline,
		ChainOfThought: s.ChainOfThought,
		Evaluation:     s.Evaluation,
		Error:          s.Err,
	}

	if s.Document != nil {
		r.DocumentID = s.Document.ID
		r.Sections = s.Document.Sections
	}

	return r
}
