package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers price and ticker search routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/prices", h.HandleGetPrices)
	r.Route("/tickers", func(r chi.Router) {
		r.Get("/search", h.HandleSearchTickers)
	})
}
