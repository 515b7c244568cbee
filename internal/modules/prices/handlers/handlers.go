// Package handlers provides HTTP handlers for price and ticker lookups.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/prices"
	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
)

const defaultSearchLimit = 30

// PriceLoader loads every row for a ticker set
type PriceLoader interface {
	Load(ctx context.Context, tickers []string, from string) []domain.PriceRecord
}

// Handler handles price HTTP requests
type Handler struct {
	loader   PriceLoader
	searcher prices.TickerSearcher
	log      zerolog.Logger
}

// NewHandler creates a new price handler
func NewHandler(loader PriceLoader, searcher prices.TickerSearcher, log zerolog.Logger) *Handler {
	return &Handler{
		loader:   loader,
		searcher: searcher,
		log:      log.With().Str("handler", "prices").Logger(),
	}
}

// seriesPoint is one aligned close per ticker on a date
type seriesPoint struct {
	Date   string              `json:"date"`
	Closes map[string]*float64 `json:"closes"`
}

// HandleGetPrices handles GET /api/prices?tickers=A,B&from=YYYY-MM-DD
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	tickers := utils.NormalizeTickers(utils.ParseCSV(r.URL.Query().Get("tickers")))
	if len(tickers) == 0 {
		http.Error(w, "tickers parameter is required", http.StatusBadRequest)
		return
	}

	from := r.URL.Query().Get("from")
	if from != "" {
		if _, err := time.Parse(domain.DateLayout, from); err != nil {
			http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	rows := h.loader.Load(r.Context(), tickers, from)
	aligned := timeseries.Align(rows, tickers)

	points := make([]seriesPoint, len(aligned.Dates))
	for i, date := range aligned.Dates {
		closes := make(map[string]*float64, len(aligned.Tickers))
		for _, t := range aligned.Tickers {
			if v := aligned.Series[t][i]; domain.ValidClose(v) {
				closes[t] = &v
			} else {
				closes[t] = nil
			}
		}
		points[i] = seriesPoint{Date: date, Closes: closes}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"tickers": aligned.Tickers,
			"dates":   aligned.Dates,
			"series":  points,
			"rows":    len(rows),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleSearchTickers handles GET /api/tickers/search?q=...&limit=N
func (h *Handler) HandleSearchTickers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := defaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results := []domain.TickerInfo{}
	if q != "" {
		found, err := h.searcher.SearchTickers(r.Context(), q, limit)
		if err != nil {
			h.log.Error().Err(err).Str("query", q).Msg("Failed to search tickers")
			http.Error(w, "Failed to search tickers", http.StatusInternalServerError)
			return
		}
		results = found
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"query":   q,
			"results": results,
			"count":   len(results),
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
