// Package handlers provides HTTP handlers for trading signal operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/internal/modules/signals"
)

// maxGenerateCount caps a single generate request.
const maxGenerateCount = 20

// Handler handles trading signal HTTP requests
type Handler struct {
	service *signals.Service
	log     zerolog.Logger
}

// NewHandler creates a new signals handler
func NewHandler(service *signals.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "signals").Logger(),
	}
}

// HandleListSignals handles GET /api/signals
func (h *Handler) HandleListSignals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := signals.Filters{
		Market:   q.Get("market"),
		Type:     signals.Type(q.Get("type")),
		Strength: signals.Strength(q.Get("strength")),
		Status:   signals.Status(q.Get("status")),
	}

	if raw := q.Get("min_confidence"); raw != "" {
		minConfidence, err := strconv.ParseFloat(raw, 64)
		if err != nil || minConfidence < 0 || minConfidence > 100 {
			h.writeError(w, http.StatusBadRequest, "min_confidence must be between 0 and 100")
			return
		}
		filters.MinConfidence = minConfidence
	}

	h.writeJSON(w, http.StatusOK, h.service.List(filters))
}

// HandleGetSignal handles GET /api/signals/{id}
func (h *Handler) HandleGetSignal(w http.ResponseWriter, r *http.Request, id string) {
	sig, err := h.service.Get(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Signal not found")
		return
	}
	h.writeJSON(w, http.StatusOK, sig)
}

// HandleGetStats handles GET /api/signals/stats
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Stats())
}

// HandleGenerateSignals handles POST /api/signals/generate
func (h *Handler) HandleGenerateSignals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Count < 0 || req.Count > maxGenerateCount {
		h.writeError(w, http.StatusBadRequest, "Count must be between 1 and 20")
		return
	}

	h.writeJSON(w, http.StatusCreated, h.service.Generate(req.Count))
}

// HandleTriggerSignal handles POST /api/signals/{id}/trigger
func (h *Handler) HandleTriggerSignal(w http.ResponseWriter, r *http.Request, id string) {
	sig, err := h.service.Trigger(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Signal not found")
		return
	}
	h.writeJSON(w, http.StatusOK, sig)
}

// HandleCancelSignal handles POST /api/signals/{id}/cancel
func (h *Handler) HandleCancelSignal(w http.ResponseWriter, r *http.Request, id string) {
	sig, err := h.service.Cancel(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Signal not found")
		return
	}
	h.writeJSON(w, http.StatusOK, sig)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
