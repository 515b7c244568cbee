// Package timeseries aligns sparse per-ticker price rows onto one shared date axis.
package timeseries

import (
	"sort"

	"github.com/aristath/folio/internal/domain"
)

// Aligned holds gap-filled close series for a set of tickers.
// Series[t][i] is the close of ticker t on Dates[i]. A series is NaN
// throughout only when the ticker has no observation anywhere.
type Aligned struct {
	Dates   []string             `json:"dates"`
	Tickers []string             `json:"tickers"`
	Series  map[string][]float64 `json:"-"`
}

// Empty reports whether there is nothing to simulate.
func (a Aligned) Empty() bool {
	return len(a.Dates) == 0 || len(a.Tickers) == 0
}

// Observed reports whether the ticker had at least one valid close.
func (a Aligned) Observed(ticker string) bool {
	s, ok := a.Series[ticker]
	return ok && len(s) > 0 && domain.ValidClose(s[0])
}

// Dates returns the sorted, deduplicated dates of all rows.
// Rows with a missing close still contribute their date.
func Dates(rows []domain.PriceRecord) []string {
	seen := make(map[string]struct{}, len(rows))
	dates := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Date == "" {
			continue
		}
		if _, ok := seen[r.Date]; ok {
			continue
		}
		seen[r.Date] = struct{}{}
		dates = append(dates, r.Date)
	}
	sort.Strings(dates)
	return dates
}

// Align re-indexes every requested ticker onto the pooled date universe,
// forward-filling gaps and then backward-filling leading gaps.
// Duplicate tickers are collapsed keeping first-seen order. Empty tickers
// or empty rows yield an empty result.
func Align(rows []domain.PriceRecord, tickers []string) Aligned {
	tickers = uniqueTickers(tickers)
	if len(tickers) == 0 || len(rows) == 0 {
		return Aligned{Dates: []string{}, Tickers: tickers, Series: map[string][]float64{}}
	}

	dates := Dates(rows)

	lookup := make(map[string]map[string]float64, len(tickers))
	for _, t := range tickers {
		lookup[t] = make(map[string]float64)
	}
	for _, r := range rows {
		byDate, ok := lookup[r.Ticker]
		if !ok || !r.HasClose() {
			continue
		}
		byDate[r.Date] = r.Close
	}

	series := make(map[string][]float64, len(tickers))
	for _, t := range tickers {
		series[t] = fill(dates, lookup[t])
	}

	return Aligned{Dates: dates, Tickers: tickers, Series: series}
}

func fill(dates []string, byDate map[string]float64) []float64 {
	out := make([]float64, len(dates))

	last := domain.Missing()
	for i, d := range dates {
		if v, ok := byDate[d]; ok {
			last = v
		}
		out[i] = last
	}

	next := domain.Missing()
	for i := len(dates) - 1; i >= 0; i-- {
		if domain.ValidClose(out[i]) {
			next = out[i]
			continue
		}
		out[i] = next
	}

	return out
}

func uniqueTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
