// Package handlers provides HTTP handlers for basket allocation edits.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/folio/internal/modules/allocation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles allocation HTTP requests. It keeps no state: the
// client sends the current allocation with every edit.
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "allocation").Logger(),
	}
}

// EditRequest is the body of POST /api/allocation/edit
type EditRequest struct {
	Allocation allocation.Allocation `json:"allocation"`
	Edit       allocation.Edit       `json:"edit"`
}

// RegisterRoutes registers allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/allocation", func(r chi.Router) {
		r.Post("/", h.HandleNew)
		r.Post("/edit", h.HandleEdit)
	})
}

// HandleNew handles POST /api/allocation with {"tickers": [...]} and
// returns an equally weighted basket
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tickers []string `json:"tickers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.writeAllocation(w, allocation.New(req.Tickers...))
}

// HandleEdit handles POST /api/allocation/edit
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	next, err := req.Allocation.Apply(req.Edit)
	if err != nil {
		if errors.Is(err, allocation.ErrUnknownOp) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to apply allocation edit")
		h.writeError(w, http.StatusInternalServerError, "Failed to apply edit")
		return
	}

	h.writeAllocation(w, next)
}

func (h *Handler) writeAllocation(w http.ResponseWriter, a allocation.Allocation) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"allocation": a,
			"sum":        a.Sum(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
