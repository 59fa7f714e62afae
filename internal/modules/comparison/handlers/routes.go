package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all market comparison routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/comparison", func(r chi.Router) {
		r.Get("/", h.HandleCompare)
		r.Get("/correlation", h.HandleCorrelation)
	})
}
