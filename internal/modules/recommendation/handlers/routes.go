package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers recommendation and diagnosis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/recommendations", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/rank", h.HandleRank)
	})
	r.Route("/diagnosis", func(r chi.Router) {
		r.Get("/questions", h.HandleQuestions)
		r.Post("/", h.HandleDiagnose)
	})
}
