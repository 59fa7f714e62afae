// Package handlers provides HTTP handlers for position and portfolio operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	ledger  *portfolio.Ledger
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(ledger *portfolio.Ledger, service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		ledger:  ledger,
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleListPositions handles GET /api/portfolio/positions
func (h *Handler) HandleListPositions(w http.ResponseWriter, r *http.Request) {
	status := portfolio.Status(r.URL.Query().Get("status"))
	if status != "" && status != portfolio.StatusOpen && status != portfolio.StatusClosed {
		h.writeError(w, http.StatusBadRequest, "Invalid status filter: "+string(status))
		return
	}

	h.writeJSON(w, http.StatusOK, h.ledger.List(status))
}

// HandleGetPosition handles GET /api/portfolio/positions/{id}
func (h *Handler) HandleGetPosition(w http.ResponseWriter, r *http.Request, id string) {
	pos, err := h.ledger.Get(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Position not found")
		return
	}
	h.writeJSON(w, http.StatusOK, pos)
}

// HandleAddPosition handles POST /api/portfolio/positions
func (h *Handler) HandleAddPosition(w http.ResponseWriter, r *http.Request) {
	var req portfolio.Position
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	pos, err := h.ledger.Add(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, pos)
}

// HandleClosePosition handles POST /api/portfolio/positions/{id}/close
func (h *Handler) HandleClosePosition(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		ExitPrice float64 `json:"exit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ExitPrice <= 0 {
		h.writeError(w, http.StatusBadRequest, "Exit price must be positive")
		return
	}

	pos, err := h.ledger.Close(id, req.ExitPrice)
	if err != nil {
		switch {
		case errors.Is(err, portfolio.ErrPositionNotFound):
			h.writeError(w, http.StatusNotFound, "Position not found")
		case errors.Is(err, portfolio.ErrPositionClosed):
			h.writeError(w, http.StatusConflict, "Position already closed")
		default:
			h.log.Error().Err(err).Str("id", id).Msg("Failed to close position")
			h.writeError(w, http.StatusInternalServerError, "Failed to close position")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, pos)
}

// HandleUpdatePosition handles PUT /api/portfolio/positions/{id}
func (h *Handler) HandleUpdatePosition(w http.ResponseWriter, r *http.Request, id string) {
	var req portfolio.PositionUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	pos, err := h.ledger.Update(id, req)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Position not found")
		return
	}

	h.writeJSON(w, http.StatusOK, pos)
}

// HandleGetMetrics handles GET /api/portfolio/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Metrics())
}

// HandleGetAllocation handles GET /api/portfolio/allocation
func (h *Handler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Allocation())
}

// HandleGetHistory handles GET /api/portfolio/history
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			h.writeError(w, http.StatusBadRequest, "Days must be between 1 and 365")
			return
		}
		days = parsed
	}

	h.writeJSON(w, http.StatusOK, h.service.PerformanceHistory(days))
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
