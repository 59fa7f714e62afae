package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/", h.HandleGetBoard)
		r.Get("/historical", h.HandleGetHistorical)
		r.Get("/stream", h.HandleStream)
	})
}
