package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"papersumm/internal/domain"
)

const (
	defaultTimeout  = 120 * time.Second
	maxErrorBodyLen = 4 << 10

	uploadFormField = "file"
)

// Client issues typed calls to the upload, summarize and evaluate endpoints.
// It never retries.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) Upload(ctx context.Context, file domain.File) (domain.Document, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFormField, file.Name))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return domain.Document{}, &domain.TransportError{Endpoint: EndpointUpload, Cause: err}
	}
	if _, err = part.Write(file.Data); err != nil {
		return domain.Document{}, &domain.TransportError{Endpoint: EndpointUpload, Cause: err}
	}
	if err = mw.Close(); err != nil {
		return domain.Document{}, &domain.TransportError{Endpoint: EndpointUpload, Cause: err}
	}

	var resp uploadResponse
	if err = c.call(ctx, EndpointUpload, mw.FormDataContentType(), &body, &resp); err != nil {
		return domain.Document{}, err
	}

	sections := resp.Sections
	if sections == nil {
		sections = []string{}
	}

	return domain.Document{
		ID:       resp.DocumentID,
		Text:     resp.TextPreview,
		Sections: sections,
	}, nil
}

func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return SummarizeResponse{}, &domain.TransportError{Endpoint: EndpointSummarize, Cause: err}
	}

	var resp SummarizeResponse
	if err = c.call(ctx, EndpointSummarize, "application/json", bytes.NewReader(payload), &resp); err != nil {
		return SummarizeResponse{}, err
	}

	return resp, nil
}

func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (domain.Scores, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.Scores{}, &domain.TransportError{Endpoint: EndpointEvaluate, Cause: err}
	}

	var resp evaluateResponse
	if err = c.call(ctx, EndpointEvaluate, "application/json", bytes.NewReader(payload), &resp); err != nil {
		return domain.Scores{}, err
	}

	return resp.scores()
}

func (r evaluateResponse) scores() (domain.Scores, error) {
	missing := func(field string) error {
		return &domain.MalformedResponseError{Endpoint: EndpointEvaluate, Field: field}
	}

	switch {
	case r.Rouge == nil:
		return domain.Scores{}, missing("rouge")
	case r.Rouge.Rouge1 == nil:
		return domain.Scores{}, missing("rouge.rouge1")
	case r.Rouge.Rouge2 == nil:
		return domain.Scores{}, missing("rouge.rouge2")
	case r.Rouge.RougeL == nil:
		return domain.Scores{}, missing("rouge.rougeL")
	case r.BLEU == nil:
		return domain.Scores{}, missing("bleu")
	}

	return domain.Scores{
		Rouge1: *r.Rouge.Rouge1,
		Rouge2: *r.Rouge.Rouge2,
		RougeL: *r.Rouge.RougeL,
		BLEU:   *r.BLEU,
	}, nil
}

func (c *Client) call(
	ctx context.Context,
	endpoint string,
	contentType string,
	body io.Reader,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return &domain.TransportError{Endpoint: endpoint, Cause: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.hc.Do(req)
	if err != nil {
		return &domain.TransportError{Endpoint: endpoint, Cause: fmt.Errorf("do request: %w", err)}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WarnContext(ctx, "Failed to close response body",
				"error", closeErr,
				"endpoint", endpoint)
		}
	}()

	c.log.DebugContext(ctx, "Response is received",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode/100 != 2 {
		return &domain.TransportError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Cause:    errors.New(errorMessage(resp)),
		}
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Cause:    fmt.Errorf("decode response: %w", err),
		}
	}

	return nil
}

// errorMessage extracts a short human-readable message from an error response.
func errorMessage(resp *http.Response) string {
	slurp, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	var er errorResponse
	if json.Unmarshal(slurp, &er) == nil {
		if msg := strings.TrimSpace(er.Detail); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(er.Error); msg != "" {
			return msg
		}
	}

	if msg := strings.TrimSpace(string(slurp)); msg != "" && !strings.HasPrefix(msg, "{") {
		return msg
	}

	return http.StatusText(resp.StatusCode)
}
