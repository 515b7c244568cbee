// Package handlers provides the stateless simulation endpoint.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/allocation"
	"github.com/aristath/folio/internal/modules/display"
	"github.com/aristath/folio/internal/modules/simulation"
	"github.com/aristath/folio/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PriceLoader loads every row for a ticker set
type PriceLoader interface {
	Load(ctx context.Context, tickers []string, from string) []domain.PriceRecord
}

// Handler handles simulation requests
type Handler struct {
	loader PriceLoader
	log    zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(loader PriceLoader, log zerolog.Logger) *Handler {
	return &Handler{
		loader: loader,
		log:    log.With().Str("handler", "simulation").Logger(),
	}
}

// SimulateRequest is the body of POST /api/simulate. Amounts are in yen.
// Missing weights mean an equal split; missing mode and range mean lump
// and MAX.
type SimulateRequest struct {
	Tickers    []string           `json:"tickers"`
	Weights    map[string]float64 `json:"weights"`
	Mode       string             `json:"mode"`
	Range      string             `json:"range"`
	LumpAmount float64            `json:"lump_amount"`
	DCAInitial float64            `json:"dca_initial"`
	DCAMonthly float64            `json:"dca_monthly"`
}

// RegisterRoutes registers simulation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/simulate", h.HandleSimulate)
}

// HandleSimulate handles POST /api/simulate
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	in, err := req.inputs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	timer := utils.NewTimer("simulate", h.log)
	rows := h.loader.Load(r.Context(), in.Tickers, "")
	result := simulation.Simulate(rows, in)
	timer.Stop()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"inputs":  in,
			"result":  result,
			"summary": display.Summarize(result),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"rows":      len(rows),
		},
	})
}

func (req SimulateRequest) inputs() (simulation.Inputs, error) {
	in := simulation.Inputs{
		Tickers:    utils.NormalizeTickers(req.Tickers),
		Mode:       simulation.ModeLump,
		Range:      simulation.RangeMax,
		LumpAmount: req.LumpAmount,
		DCAInitial: req.DCAInitial,
		DCAMonthly: req.DCAMonthly,
	}

	if req.Mode != "" {
		m, err := simulation.ParseMode(req.Mode)
		if err != nil {
			return in, err
		}
		in.Mode = m
	}
	if req.Range != "" {
		rg, err := simulation.ParseRange(req.Range)
		if err != nil {
			return in, err
		}
		in.Range = rg
	}

	if len(req.Weights) == 0 {
		in.Weights = allocation.New(in.Tickers...).FloatWeights()
	} else {
		in.Weights = make(map[string]float64, len(req.Weights))
		for t, v := range req.Weights {
			if sym := strings.ToUpper(strings.TrimSpace(t)); sym != "" {
				in.Weights[sym] += v
			}
		}
	}

	return in, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
