package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papersumm/internal/config"
	"papersumm/internal/database"
	"papersumm/internal/ratelimiter"
	"papersumm/internal/scheduler"
	"papersumm/internal/server"
	"papersumm/internal/summarizer"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadServer()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	summ, model := initSummarizer(ctx, cfg, log)

	limiter := ratelimiter.New(summ, cfg.LLMMinInterval, log)
	defer limiter.Stop()

	sched := scheduler.New(ctx, db, cfg.Retention, cfg.PruneSpec, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", cfg.PruneSpec,
			"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", cfg.PruneSpec,
		"retention", cfg.Retention.String())

	srv := server.New(server.Config{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Model:              model,
	}, db, limiter, log)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- srv.Listen(cfg.ListenAddr)
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-listenErr:
		log.ErrorContext(ctx, "Server stopped listening",
			"error", err,
			"listenAddr", cfg.ListenAddr)
	}
	cancel()

	if err = srv.Shutdown(); err != nil {
		log.ErrorContext(ctx, "Failed to shut down server",
			"error", err)
	}

	log.InfoContext(ctx, "Server is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initSummarizer(ctx context.Context, cfg config.ServerConfig, log *slog.Logger) (summarizer.Summarizer, string) {
	if cfg.OpenAIAPIKey == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so fallback will be used",
			"envVar", "OPENAI_API_KEY")

		return summarizer.Fallback{}, summarizer.FallbackModel
	}

	s, err := summarizer.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI summarizer so fallback will be used",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return summarizer.Fallback{}, summarizer.FallbackModel
	}

	log.InfoContext(ctx, "OpenAI summarizer is initialized",
		"baseURL", cfg.OpenAIBaseURL,
		"model", s.Model())

	return s, s.Model()
}
