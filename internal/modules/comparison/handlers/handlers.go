// Package handlers provides HTTP handlers for the market comparison tool.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tradedeck/tradedeck/internal/modules/comparison"
)

// maxCompareSymbols caps a single comparison request.
const maxCompareSymbols = 10

// Handler handles market comparison HTTP requests
type Handler struct {
	service *comparison.Service
	log     zerolog.Logger
}

// NewHandler creates a new comparison handler
func NewHandler(service *comparison.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "comparison").Logger(),
	}
}

// HandleCompare handles GET /api/comparison
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "Symbols parameter is required")
		return
	}

	symbols := make([]string, 0, 4)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) < 2 {
		h.writeError(w, http.StatusBadRequest, "At least two symbols are required")
		return
	}
	if len(symbols) > maxCompareSymbols {
		h.writeError(w, http.StatusBadRequest, "Too many symbols (max 10)")
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Compare(symbols))
}

// HandleCorrelation handles GET /api/comparison/correlation
func (h *Handler) HandleCorrelation(w http.ResponseWriter, r *http.Request) {
	symbol1 := strings.TrimSpace(r.URL.Query().Get("symbol1"))
	symbol2 := strings.TrimSpace(r.URL.Query().Get("symbol2"))
	if symbol1 == "" || symbol2 == "" {
		h.writeError(w, http.StatusBadRequest, "Both symbol1 and symbol2 are required")
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Correlation(symbol1, symbol2))
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
