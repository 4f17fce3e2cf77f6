package providers

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"github.com/rianxlewis/routine-builder/internal/models"
)

// OpenAI calls the primary chat completion API. Its 2xx responses define
// the canonical response shape, so the body is carried back untouched.
type OpenAI struct {
	client       *resty.Client
	apiKey       string
	defaultModel string
}

func NewOpenAI(apiKey, baseURL, defaultModel string) *OpenAI {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout)

	return &OpenAI{
		client:       client,
		apiKey:       apiKey,
		defaultModel: defaultModel,
	}
}

// CreateChatCompletion forwards the request with neutral sampling
// parameters: top_p 1, no frequency or presence penalty.
func (c *OpenAI) CreateChatCompletion(ctx context.Context, req models.RoutineRequest) (*Result, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	body := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   maxTokensOrDefault(req),
		Temperature: float32(temperatureOrDefault(req)),
		TopP:        1,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey)).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	return &Result{StatusCode: resp.StatusCode(), Body: resp.Bytes()}, nil
}

func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
