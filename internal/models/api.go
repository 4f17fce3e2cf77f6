package models

// APIError is the error payload for the client-facing API. The proxy
// gateway has its own fixed error bodies and does not use this envelope.
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToggleSelectionRequest toggles one product in a session's selection.
type ToggleSelectionRequest struct {
	ProductID int `json:"product_id"`
}

// PreferencesRequest updates the text-direction preference.
type PreferencesRequest struct {
	RTL bool `json:"rtl"`
}

type PreferencesResponse struct {
	RTL bool `json:"rtl"`
}

// CreateSessionRequest optionally names an existing session whose persisted
// selection and preference should be rehydrated.
type CreateSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type SessionResponse struct {
	SessionID string        `json:"session_id"`
	Selected  []Product     `json:"selected_products"`
	RTL       bool          `json:"rtl"`
	History   []ChatMessage `json:"history,omitempty"`
}

type SelectionResponse struct {
	Selected []Product `json:"selected_products"`
	Count    int       `json:"count"`
}

// ChatRequest is one typed follow-up message from the user.
type ChatRequest struct {
	Message string `json:"message"`
}

// AssistantReply is a single assistant chat bubble. Degraded marks the
// apologetic fallback bubble shown when the upstream call failed; raw error
// details are never included.
type AssistantReply struct {
	Message     string   `json:"message"`
	MessageHTML string   `json:"message_html"`
	Citations   []string `json:"citations,omitempty"`
	Degraded    bool     `json:"degraded,omitempty"`
}

// RoutineResponse is the result of routine generation. FollowUp is the
// canned prompt the UI shows as a second assistant bubble after
// FollowUpDelayMS milliseconds.
type RoutineResponse struct {
	AssistantReply
	FollowUp        string `json:"follow_up,omitempty"`
	FollowUpDelayMS int    `json:"follow_up_delay_ms,omitempty"`
}
