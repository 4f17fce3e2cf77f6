// Package gateway implements the stateless proxy between chat clients and
// the upstream LLM providers: provider selection, secondary-to-primary
// fallback, and normalization of the secondary provider's response shape.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rianxlewis/routine-builder/internal/models"
	"github.com/rianxlewis/routine-builder/internal/providers"
)

// Provider names reported in the X-Provider response header.
const (
	ProviderOpenAI     = "openai"
	ProviderPerplexity = "perplexity"
)

// Provider is one upstream chat completion API.
type Provider interface {
	CreateChatCompletion(ctx context.Context, req models.RoutineRequest) (*providers.Result, error)
}

// Outcome is the routed result of one completion: the exact status and body
// the HTTP layer must emit, tagged with the upstream that produced it.
type Outcome struct {
	Provider   string
	Fallback   bool
	StatusCode int
	Body       []byte
}

// Service decides which provider answers a request and shapes the result.
// It holds no state across invocations.
type Service struct {
	primary             Provider
	secondary           Provider
	secondaryConfigured bool
	log                 zerolog.Logger
}

func NewService(primary, secondary Provider, secondaryConfigured bool, log zerolog.Logger) *Service {
	return &Service{
		primary:             primary,
		secondary:           secondary,
		secondaryConfigured: secondaryConfigured,
		log:                 log,
	}
}

// Complete routes the request: the secondary (web-search) path is taken
// only when the request asks for it and a secondary key is configured;
// everything else goes to the primary. A returned error means an
// unexpected failure (transport, malformed upstream payload) and maps to a
// 500 at the HTTP layer.
func (s *Service) Complete(ctx context.Context, req models.RoutineRequest) (*Outcome, error) {
	if req.UseWebSearch && s.secondaryConfigured && s.secondary != nil {
		return s.completeSecondary(ctx, req)
	}
	return s.completePrimary(ctx, req)
}

func (s *Service) completePrimary(ctx context.Context, req models.RoutineRequest) (*Outcome, error) {
	res, err := s.primary.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	if !res.OK() {
		s.log.Warn().Int("status", res.StatusCode).Msg("openai api error")
		body, err := json.Marshal(map[string]string{
			"error":   "OpenAI API request failed",
			"details": string(res.Body),
		})
		if err != nil {
			return nil, err
		}
		return &Outcome{Provider: ProviderOpenAI, StatusCode: res.StatusCode, Body: body}, nil
	}

	// A 2xx body passes through verbatim: the primary's raw JSON defines
	// the canonical shape consumers parse.
	return &Outcome{Provider: ProviderOpenAI, StatusCode: http.StatusOK, Body: res.Body}, nil
}

func (s *Service) completeSecondary(ctx context.Context, req models.RoutineRequest) (*Outcome, error) {
	res, err := s.secondary.CreateChatCompletion(ctx, req)
	if err != nil || !res.OK() {
		// Fall back to the primary with the original request. The secondary
		// failure is never surfaced to the caller.
		if err != nil {
			s.log.Warn().Err(err).Msg("perplexity request failed, falling back to openai")
		} else {
			s.log.Warn().Int("status", res.StatusCode).Msg("perplexity api error, falling back to openai")
		}
		out, ferr := s.completePrimary(ctx, req)
		if ferr != nil {
			return nil, ferr
		}
		out.Fallback = true
		return out, nil
	}

	normalized, err := Normalize(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize perplexity response: %w", err)
	}

	body, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	return &Outcome{Provider: ProviderPerplexity, StatusCode: http.StatusOK, Body: body}, nil
}

// secondaryResponse is the subset of the secondary provider's shape the
// normalization step reads.
type secondaryResponse struct {
	Choices []struct {
		Message      models.ChatMessage `json:"message"`
		FinishReason string             `json:"finish_reason"`
	} `json:"choices"`
	Usage     json.RawMessage `json:"usage"`
	Citations []string        `json:"citations"`
}

// Normalize reshapes a secondary-provider response into the canonical
// shape: the first choice's content and finish_reason carried across, the
// role fixed to assistant, usage passed through opaquely, and citations
// defaulted to an empty list when absent.
func Normalize(raw []byte) (*models.NormalizedResponse, error) {
	var resp secondaryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}

	citations := resp.Citations
	if citations == nil {
		citations = []string{}
	}

	return &models.NormalizedResponse{
		Choices: []models.Choice{
			{
				Message: models.ChatMessage{
					Role:    models.RoleAssistant,
					Content: resp.Choices[0].Message.Content,
				},
				FinishReason: resp.Choices[0].FinishReason,
			},
		},
		Usage:     resp.Usage,
		Citations: citations,
	}, nil
}
