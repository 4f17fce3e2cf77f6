package models

import "encoding/json"

// Roles used in conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation. Order within a
// conversation is significant: the sequence is replayed to the provider
// verbatim.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RoutineRequest is the payload accepted by the proxy gateway. Field names
// match the wire contract: snake_case except useWebSearch, which the
// original client sends camelCased.
type RoutineRequest struct {
	Messages     []ChatMessage `json:"messages"`
	Model        string        `json:"model,omitempty"`
	MaxTokens    int           `json:"max_tokens,omitempty"`
	Temperature  *float64      `json:"temperature,omitempty"`
	UseWebSearch bool          `json:"useWebSearch,omitempty"`
}

// Choice is one completion choice in the canonical response shape.
type Choice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// NormalizedResponse is the single shape consumers parse regardless of which
// upstream answered. Usage is provider-reported token accounting passed
// through opaquely.
type NormalizedResponse struct {
	Choices   []Choice        `json:"choices"`
	Usage     json.RawMessage `json:"usage,omitempty"`
	Citations []string        `json:"citations"`
}

// Reply returns the assistant text of the first choice, or "" when the
// response carries no usable content.
func (r *NormalizedResponse) Reply() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
