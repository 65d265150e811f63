package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"papersumm/internal/database"
	"papersumm/internal/summarizer"
)

const (
	bodyLimit       = 20 * 1024 * 1024
	previewRunes    = 2000
	shutdownTimeout = 10 * time.Second
)

// Store persists uploaded documents and computed evaluations.
type Store interface {
	SaveDocument(ctx context.Context, doc database.Document) error
	GetDocument(ctx context.Context, id string) (*database.Document, error)
	SaveEvaluation(ctx context.Context, e database.Evaluation) (int64, error)
}

type Config struct {
	CORSAllowedOrigins string
	Model              string
}

type Server struct {
	app        *fiber.App
	store      Store
	summarizer summarizer.Summarizer
	validate   *validator.Validate
	model      string
	now        func() time.Time
	log        *slog.Logger
}

func New(cfg Config, store Store, s summarizer.Summarizer, log *slog.Logger) *Server {
	srv := &Server{
		store:      store,
		summarizer: s,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		model:      cfg.Model,
		now:        time.Now,
		log:        log,
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          srv.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	srv.registerRoutes(app)
	srv.app = app

	return srv
}

func (s *Server) registerRoutes(r fiber.Router) {
	r.Get("/health", s.health)
	r.Post("/upload", s.upload)
	r.Get("/documents/:id", s.document)
	r.Post("/summarize", s.summarize)
	r.Post("/evaluate", s.evaluate)
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info("Server is listening",
		"addr", addr,
		"model", s.model)

	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

// handleError renders every failure as {"detail": "..."}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		detail = fiberErr.Message
	} else {
		s.log.ErrorContext(c.UserContext(), "Failed to handle request",
			"error", err,
			"method", c.Method(),
			"path", c.Path())
	}

	return c.Status(code).JSON(errorResponse{Detail: detail})
}
