package gateway

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rianxlewis/routine-builder/internal/models"
)

// Handler exposes the gateway over HTTP at the server root: POST only,
// preflight OPTIONS, permissive cross-origin headers on every response.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte("Method not allowed"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	var req models.RoutineRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Messages == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid request: messages array is required",
		})
		return
	}

	out, err := h.service.Complete(r.Context(), req)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Provider", out.Provider)
	if out.Fallback {
		w.Header().Set("X-Fallback", "true")
	}
	w.WriteHeader(out.StatusCode)
	w.Write(out.Body)
}

func (h *Handler) writeInternalError(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Msg("gateway error")
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Internal server error",
		"message": err.Error(),
	})
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
