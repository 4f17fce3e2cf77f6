// Package providers holds the HTTP clients for the two upstream chat
// completion APIs: OpenAI (primary) and Perplexity (secondary, with
// built-in web search).
package providers

import (
	"time"

	"github.com/rianxlewis/routine-builder/internal/models"
)

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7

	requestTimeout = 120 * time.Second
)

// Result is the raw outcome of one upstream call: the HTTP status plus the
// verbatim response body. The gateway decides what to do with it; clients
// here never reshape upstream payloads.
type Result struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// maxTokensOrDefault mirrors the wire contract's `max_tokens || 1000`:
// an absent or zero value falls back to the default.
func maxTokensOrDefault(req models.RoutineRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}

// temperatureOrDefault mirrors `temperature || 0.7`: absent and explicit
// zero both fall back to the default.
func temperatureOrDefault(req models.RoutineRequest) float64 {
	if req.Temperature != nil && *req.Temperature != 0 {
		return *req.Temperature
	}
	return defaultTemperature
}
