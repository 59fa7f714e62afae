package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/metrics", h.HandleGetMetrics)
		r.Get("/allocation", h.HandleGetAllocation)
		r.Get("/history", h.HandleGetHistory)

		r.Route("/positions", func(r chi.Router) {
			r.Get("/", h.HandleListPositions)
			r.Post("/", h.HandleAddPosition)

			r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetPosition(w, r, chi.URLParam(r, "id"))
			})
			r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleUpdatePosition(w, r, chi.URLParam(r, "id"))
			})
			r.Post("/{id}/close", func(w http.ResponseWriter, r *http.Request) {
				h.HandleClosePosition(w, r, chi.URLParam(r, "id"))
			})
		})
	})
}
