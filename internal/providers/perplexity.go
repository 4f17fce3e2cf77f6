package providers

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"github.com/rianxlewis/routine-builder/internal/models"
)

// perplexityModel is the search-enabled variant; callers cannot override it.
const perplexityModel = "llama-3.1-sonar-small-128k-online"

// searchDomains scopes web search to beauty-retail sites.
var searchDomains = []string{
	"loreal.com",
	"sephora.com",
	"ulta.com",
	"dermstore.com",
}

type perplexityRequest struct {
	Model                  string               `json:"model"`
	Messages               []models.ChatMessage `json:"messages"`
	MaxTokens              int                  `json:"max_tokens"`
	Temperature            float64              `json:"temperature"`
	TopP                   float64              `json:"top_p"`
	ReturnCitations        bool                 `json:"return_citations"`
	SearchDomainFilter     []string             `json:"search_domain_filter"`
	ReturnImages           bool                 `json:"return_images"`
	ReturnRelatedQuestions bool                 `json:"return_related_questions"`
	SearchRecencyFilter    string               `json:"search_recency_filter"`
	TopK                   int                  `json:"top_k"`
	Stream                 bool                 `json:"stream"`
	PresencePenalty        float64              `json:"presence_penalty"`
	FrequencyPenalty       float64              `json:"frequency_penalty"`
}

// Perplexity calls the web-search-capable chat completion API. Its
// response shape differs from the canonical one and is normalized by the
// gateway.
type Perplexity struct {
	client *resty.Client
	apiKey string
}

func NewPerplexity(apiKey, baseURL string) *Perplexity {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout)

	return &Perplexity{client: client, apiKey: apiKey}
}

// CreateChatCompletion forwards the conversation with citation return
// enabled, a one-month recency filter, and the fixed beauty-retail domain
// allow list.
func (c *Perplexity) CreateChatCompletion(ctx context.Context, req models.RoutineRequest) (*Result, error) {
	body := perplexityRequest{
		Model:               perplexityModel,
		Messages:            req.Messages,
		MaxTokens:           maxTokensOrDefault(req),
		Temperature:         temperatureOrDefault(req),
		TopP:                0.9,
		ReturnCitations:     true,
		SearchDomainFilter:  searchDomains,
		SearchRecencyFilter: "month",
		FrequencyPenalty:    1,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey)).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("perplexity request failed: %w", err)
	}

	return &Result{StatusCode: resp.StatusCode(), Body: resp.Bytes()}, nil
}
