package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rianxlewis/routine-builder/internal/catalog"
	"github.com/rianxlewis/routine-builder/internal/format"
	"github.com/rianxlewis/routine-builder/internal/models"
	"github.com/rianxlewis/routine-builder/internal/routine"
	"github.com/rianxlewis/routine-builder/internal/session"
)

// Apologetic bubbles shown in place of any provider failure. Raw error
// details go to the log, never to the end user.
const (
	routineApology = "I apologize, but I'm having trouble generating your routine right now. Please check your API connection and try again."
	chatApology    = "I'm sorry, I'm having trouble responding right now. Please check your API connection and try again."
)

type SessionHandler struct {
	sessions *session.Manager
	catalog  *catalog.Catalog
	routines *routine.Service
	log      zerolog.Logger
}

func NewSessionHandler(sessions *session.Manager, c *catalog.Catalog, routines *routine.Service, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		catalog:  c,
		routines: routines,
		log:      log,
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if r.Body != nil {
		// An empty or absent body starts a fresh session.
		json.NewDecoder(r.Body).Decode(&req)
	}

	s := h.sessions.Create(r.Context(), req.SessionID)
	writeJSON(w, http.StatusCreated, h.snapshot(s))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	resp := h.snapshot(s)
	resp.History = h.sessions.History(s)
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, selectionResp(h.sessions.Selection(s)))
}

// ToggleSelection adds the product when absent and removes it when present.
// The new snapshot is persisted before the response is written.
func (h *SessionHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.ToggleSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	product, found := h.catalog.GetByID(req.ProductID)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Product not found", r))
		return
	}

	selected := h.sessions.Toggle(r.Context(), s, product)
	writeJSON(w, http.StatusOK, selectionResp(selected))
}

func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.sessions.ClearSelection(r.Context(), s)
	writeJSON(w, http.StatusOK, selectionResp(nil))
}

func (h *SessionHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.PreferencesResponse{RTL: h.sessions.RTL(s)})
}

func (h *SessionHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	h.sessions.SetRTL(r.Context(), s, req.RTL)
	writeJSON(w, http.StatusOK, models.PreferencesResponse{RTL: req.RTL})
}

// GenerateRoutine runs routine generation over the current selection. A
// provider failure degrades to the fixed apology bubble rather than an
// error status.
func (h *SessionHandler) GenerateRoutine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	reply, err := h.routines.GenerateRoutine(r.Context(), s)
	if err != nil {
		if errors.Is(err, routine.ErrEmptySelection) {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Select at least one product first", r))
			return
		}
		h.log.Error().Err(err).Str("session_id", s.ID).Msg("routine generation error")
		writeJSON(w, http.StatusOK, models.RoutineResponse{
			AssistantReply: degradedReply(routineApology),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.RoutineResponse{
		AssistantReply:  *reply,
		FollowUp:        session.FollowUpPrompt,
		FollowUpDelayMS: session.FollowUpDelayMS,
	})
}

// Chat handles one follow-up turn of the conversation.
func (h *SessionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	reply, err := h.routines.Chat(r.Context(), s, message)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID).Msg("chat error")
		writeJSON(w, http.StatusOK, degradedReply(chatApology))
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	s, ok := h.sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) snapshot(s *session.Session) models.SessionResponse {
	return models.SessionResponse{
		SessionID: s.ID,
		Selected:  h.sessions.Selection(s),
		RTL:       h.sessions.RTL(s),
	}
}

func selectionResp(selected []models.Product) models.SelectionResponse {
	if selected == nil {
		selected = []models.Product{}
	}
	return models.SelectionResponse{Selected: selected, Count: len(selected)}
}

func degradedReply(apology string) models.AssistantReply {
	return models.AssistantReply{
		Message:     apology,
		MessageHTML: format.Render(apology),
		Degraded:    true,
	}
}
