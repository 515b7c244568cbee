// Package handlers provides HTTP handlers for recommendations and the
// investor questionnaire.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/folio/internal/modules/display"
	"github.com/aristath/folio/internal/modules/recommendation"
	"github.com/aristath/folio/internal/modules/simulation"
	"github.com/rs/zerolog"
)

// BasketRunner simulates a diagnosed basket
type BasketRunner interface {
	Run(ctx context.Context, d recommendation.Diagnosis) simulation.Result
}

// Handler handles recommendation HTTP requests
type Handler struct {
	runner BasketRunner
	log    zerolog.Logger
}

// NewHandler creates a new recommendation handler
func NewHandler(runner BasketRunner, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		log:    log.With().Str("handler", "recommendation").Logger(),
	}
}

// RankRequest is the body of POST /api/recommendations/rank
type RankRequest struct {
	Weights *[5]float64 `json:"weights"`
	Limit   int         `json:"limit"`
}

// HandleList handles GET /api/recommendations?q=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	candidates := recommendation.Filter(q)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"query":      q,
			"axes":       recommendation.AxisNames,
			"candidates": candidates,
			"count":      len(candidates),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleRank handles POST /api/recommendations/rank
func (h *Handler) HandleRank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	weights := recommendation.DefaultAxisWeights
	if req.Weights != nil {
		weights = *req.Weights
	}
	for _, v := range weights {
		if v < 0 || v > 5 {
			http.Error(w, "weights must be between 0 and 5", http.StatusBadRequest)
			return
		}
	}

	ranked := recommendation.Rank(weights, req.Limit)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"weights": weights,
			"ranked":  ranked,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleQuestions handles GET /api/diagnosis/questions
func (h *Handler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"questions": recommendation.Questions,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleDiagnose handles POST /api/diagnosis
func (h *Handler) HandleDiagnose(w http.ResponseWriter, r *http.Request) {
	var answers recommendation.Answers
	if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := answers.Validate(); err != nil {
		if errors.Is(err, recommendation.ErrInvalidAnswer) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to validate answers", http.StatusInternalServerError)
		return
	}

	diagnosis := recommendation.Diagnose(answers)
	result := h.runner.Run(r.Context(), diagnosis)

	h.log.Debug().
		Str("style", string(diagnosis.Style)).
		Int("dates", len(result.Dates)).
		Msg("Diagnosis simulated")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"diagnosis":  diagnosis,
			"simulation": result,
			"summary":    display.Summarize(result),
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
