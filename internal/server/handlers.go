package server

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"papersumm/internal/database"
	"papersumm/internal/document"
	"papersumm/internal/domain"
	"papersumm/internal/scoring"
	"papersumm/internal/summarizer"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(healthResponse{Status: "ok", Model: s.model})
}

func (s *Server) upload(c *fiber.Ctx) error {
	ctx := c.UserContext()

	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "File is required")
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read uploaded file: %w", err)
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)

	text, err := document.ExtractText(fh.Filename, contentType, data)
	switch {
	case errors.Is(err, document.ErrUnsupportedContentType):
		return fiber.NewError(fiber.StatusUnsupportedMediaType,
			"File must be plain text, markdown or HTML")
	case errors.Is(err, document.ErrEmptyText):
		return fiber.NewError(fiber.StatusBadRequest, "No text found in file")
	case err != nil:
		return fmt.Errorf("extract text: %w", err)
	}

	doc := database.Document{
		ID:          uuid.NewString(),
		FileName:    fh.Filename,
		ContentType: contentType,
		Text:        text,
		Sections:    document.SectionNames(document.SplitSections(text)),
		CreatedAt:   s.now().UTC(),
	}

	if err = s.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	s.log.InfoContext(ctx, "Document is uploaded",
		"documentID", doc.ID,
		"fileName", doc.FileName,
		"contentType", contentType,
		"sections", doc.Sections)

	return c.JSON(uploadResponse{
		DocumentID:  doc.ID,
		Sections:    doc.Sections,
		TextPreview: preview(text),
	})
}

func (s *Server) document(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	doc, err := s.store.GetDocument(c.UserContext(), id)
	if errors.Is(err, database.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	return c.JSON(documentResponse{
		uploadResponse: uploadResponse{
			DocumentID:  doc.ID,
			Sections:    doc.Sections,
			TextPreview: preview(doc.Text),
		},
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) summarize(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req summarizeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body")
	}

	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "No text provided")
	}

	mode := domain.ModeBaseline
	if req.UseCoT {
		mode = domain.ModeChainOfThought
	}

	text, err := s.summarizer.Summarize(ctx, summarizer.Input{
		Text:    req.Text,
		Section: req.SectionName,
		Mode:    mode,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to summarize",
			"error", err,
			"mode", mode,
			"section", req.SectionName,
			"textLength", len(req.Text))

		return fiber.NewError(fiber.StatusBadGateway, "Summarization failed")
	}

	s.log.InfoContext(ctx, "Summary is generated",
		"mode", mode,
		"section", req.SectionName,
		"summaryLength", len(text))

	return c.JSON(summarizeResponse{
		Summary: summaryText{Text: text},
		UseCoT:  req.UseCoT,
		Model:   s.model,
	})
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body")
	}

	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, validationDetail(err))
	}

	rouge := scoring.ComputeRouge(req.SystemSummary, req.ReferenceSummary)
	scores := domain.Scores{
		Rouge1: rouge.Rouge1,
		Rouge2: rouge.Rouge2,
		RougeL: rouge.RougeL,
		BLEU:   scoring.ComputeBLEU(req.SystemSummary, req.ReferenceSummary),
	}

	id, err := s.store.SaveEvaluation(ctx, database.Evaluation{
		Label:            req.Label,
		SystemSummary:    req.SystemSummary,
		ReferenceSummary: req.ReferenceSummary,
		Scores:           scores,
		CreatedAt:        s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}

	s.log.InfoContext(ctx, "Evaluation is computed",
		"evaluationID", id,
		"label", req.Label,
		"rouge1", scores.Rouge1,
		"bleu", scores.BLEU)

	return c.JSON(evaluateResponse{
		Label: req.Label,
		Rouge: rougeScores{
			Rouge1: scores.Rouge1,
			Rouge2: scores.Rouge2,
			RougeL: scores.RougeL,
		},
		BLEU: scores.BLEU,
	})
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}

	return strings.Join(fields, "; ")
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}

	return string(runes[:previewRunes])
}
