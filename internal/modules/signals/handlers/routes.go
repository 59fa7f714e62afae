package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trading signal routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/signals", func(r chi.Router) {
		r.Get("/", h.HandleListSignals)
		r.Get("/stats", h.HandleGetStats)
		r.Post("/generate", h.HandleGenerateSignals)

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetSignal(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/trigger", func(w http.ResponseWriter, r *http.Request) {
			h.HandleTriggerSignal(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
			h.HandleCancelSignal(w, r, chi.URLParam(r, "id"))
		})
	})
}
