package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Get("/metrics", h.HandleGetMetrics)
		r.Get("/exposure", h.HandleGetExposure)
		r.Get("/position-sizing", h.HandleGetPositionSizing)

		r.Get("/positions/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetPositionRisk(w, r, chi.URLParam(r, "id"))
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.HandleListAlerts)
			r.Post("/", h.HandleGenerateAlert)
			r.Post("/{id}/acknowledge", func(w http.ResponseWriter, r *http.Request) {
				h.HandleAcknowledgeAlert(w, r, chi.URLParam(r, "id"))
			})
		})

		r.Route("/limits", func(r chi.Router) {
			r.Get("/", h.HandleGetLimits)
			r.Put("/", h.HandleUpdateLimits)
			r.Get("/check/{id}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleCheckLimits(w, r, chi.URLParam(r, "id"))
			})
		})
	})
}
