package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const finishReasonLength = "length"

// OpenAISummarizer calls an OpenAI-compatible Chat Completions API.
type OpenAISummarizer struct {
	client openai.Client
	model  string
}

// NewOpenAISummarizer builds a new summarizer instance. An empty baseURL keeps
// the library default.
func NewOpenAISummarizer(apiKey string, baseURL string, model string, opts ...option.RequestOption) (*OpenAISummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("model is empty")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAISummarizer{
		client: openai.NewClient(clientOpts...),
		model:  model,
	}, nil
}

func (s *OpenAISummarizer) Model() string {
	return s.model
}

// Summarize runs the prompt for input.Mode. A completion cut by the token
// budget is retried with a doubled budget up to limitMaxOutputTokens.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", errors.New("input is empty")
	}

	prompt, maxOutputTokens := buildPrompt(input)

	for {
		resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(s.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature:         openai.Float(temperature),
			MaxCompletionTokens: openai.Int(maxOutputTokens),
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if len(resp.Choices) == 0 {
			return "", errors.New("response has no choices")
		}
		choice := resp.Choices[0]

		if choice.FinishReason == finishReasonLength {
			if maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				choice.FinishReason,
				maxOutputTokens,
			)
		}

		summary := strings.TrimSpace(choice.Message.Content)
		if summary == "" {
			return "", fmt.Errorf("output text is missing (finishReason = %s)", choice.FinishReason)
		}
		return summary, nil
	}
}
