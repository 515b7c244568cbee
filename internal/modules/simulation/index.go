package simulation

import (
	"math"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/timeseries"
	"gonum.org/v1/gonum/floats"
)

// BuildIndex normalizes every ticker to its base close and combines them
// by weight. Dates before the window start are dropped from the output.
//
// A ticker's base is its first positive close in the window, else its first
// positive close anywhere, else 1. A ticker with no observations stays at
// 1.0. The weighted sum is divided by the weight total, floored to 1 when
// the total is zero.
func BuildIndex(a timeseries.Aligned, start string, weights map[string]float64) []IndexPoint {
	if a.Empty() {
		return []IndexPoint{}
	}

	from := windowStart(a.Dates, start)

	w := make([]float64, len(a.Tickers))
	base := make([]float64, len(a.Tickers))
	for i, t := range a.Tickers {
		w[i] = weightOf(weights, t)
		base[i] = basePrice(a.Series[t], from)
	}

	sumW := floats.Sum(w)
	if sumW == 0 {
		sumW = 1
	}

	out := make([]IndexPoint, 0, len(a.Dates)-from)
	norm := make([]float64, len(a.Tickers))
	for d := from; d < len(a.Dates); d++ {
		values := make(map[string]float64, len(a.Tickers))
		for i, t := range a.Tickers {
			price := base[i]
			if s := a.Series[t]; d < len(s) && domain.ValidClose(s[d]) {
				price = s[d]
			}
			norm[i] = price / base[i]
			values[t] = norm[i]
		}
		out = append(out, IndexPoint{
			Date:   a.Dates[d],
			Values: values,
			Total:  floats.Dot(w, norm) / sumW,
		})
	}

	return out
}

func basePrice(series []float64, from int) float64 {
	for _, v := range series[min(from, len(series)):] {
		if domain.ValidClose(v) && v > 0 {
			return v
		}
	}
	for _, v := range series {
		if domain.ValidClose(v) && v > 0 {
			return v
		}
	}
	return 1
}

// weightOf treats absent, negative and non-finite weights as zero.
func weightOf(weights map[string]float64, ticker string) float64 {
	v := weights[ticker]
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// unitPrice is the index value used to price holdings. A zero index
// (no weight at all) prices at 1 so holdings stay finite.
func unitPrice(total float64) float64 {
	if total == 0 || math.IsNaN(total) {
		return 1
	}
	return total
}
