// Package handlers provides HTTP handlers for the simulated market data feed.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/tradedeck/tradedeck/internal/modules/market"
)

// streamInterval is how often the WebSocket stream pushes a board update.
const streamInterval = 2 * time.Second

// Handler handles market data HTTP requests
type Handler struct {
	service *market.Service
	log     zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(service *market.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetBoard handles GET /api/market
func (h *Handler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	if m := r.URL.Query().Get("market"); m != "" {
		quotes, err := h.service.ByMarket(m)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Unknown market: "+m)
			return
		}
		h.writeJSON(w, http.StatusOK, quotes)
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Board())
}

// HandleGetHistorical handles GET /api/market/historical
func (h *Handler) HandleGetHistorical(w http.ResponseWriter, r *http.Request) {
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		h.writeError(w, http.StatusBadRequest, "Pair is required")
		return
	}

	timeframe := market.Timeframe(r.URL.Query().Get("timeframe"))
	if timeframe == "" {
		timeframe = market.Timeframe1H
	}

	candles, err := h.service.Historical(pair, timeframe)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Unknown timeframe: "+string(timeframe))
		return
	}

	h.writeJSON(w, http.StatusOK, candles)
}

// HandleStream handles GET /api/market/stream. It upgrades to a WebSocket and
// pushes the full board every streamInterval until the client goes away.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware, dashboard origin varies
	})
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	h.log.Info().Str("remote", r.RemoteAddr).Msg("Market stream client connected")

	ctx := r.Context()
	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		data, err := json.Marshal(h.service.Board())
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode board update")
			return
		}

		writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.log.Debug().Err(err).Msg("Market stream client disconnected")
			return
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
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
