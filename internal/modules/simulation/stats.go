package simulation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

// Summarize computes return, volatility and drawdown of the index.
func Summarize(points []IndexPoint) Stats {
	s := Stats{TradingDays: len(points)}
	if len(points) == 0 {
		return s
	}

	first := unitPrice(points[0].Total)
	last := unitPrice(points[len(points)-1].Total)
	s.TotalReturn = last/first - 1

	returns := make([]float64, 0, len(points)-1)
	peak := first
	for i, p := range points {
		v := unitPrice(p.Total)
		if i > 0 {
			returns = append(returns, v/unitPrice(points[i-1].Total)-1)
		}
		if v > peak {
			peak = v
		}
		if dd := v/peak - 1; dd < s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	if len(returns) > 1 {
		s.AnnualizedVol = stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
	}

	return s
}
