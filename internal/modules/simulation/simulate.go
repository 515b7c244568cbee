package simulation

import (
	"math"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/timeseries"
)

// MaxAmount bounds every money input in yen so AUM stays finite.
const MaxAmount = 1e13

// Simulate aligns the rows and runs both strategies over the selected window.
// It never fails: empty input gives an empty result, non-finite amounts
// count as zero, amounts are clamped to ±MaxAmount, an unknown mode behaves as lump and an unknown range as MAX.
func Simulate(rows []domain.PriceRecord, in Inputs) Result {
	aligned := timeseries.Align(rows, in.Tickers)
	return SimulateAligned(aligned, in)
}

// SimulateAligned runs the simulation over already aligned series.
func SimulateAligned(aligned timeseries.Aligned, in Inputs) Result {
	mode := in.Mode
	if mode != ModeDCA {
		mode = ModeLump
	}

	lumpAmount := clampAmount(in.LumpAmount)
	initial := clampAmount(in.DCAInitial)
	monthly := clampAmount(in.DCAMonthly)

	res := Result{
		Dates: aligned.Dates,
		Mode:  mode,
		Index: []IndexPoint{},
		Lump:  []AUMPoint{},
		DCA:   []DCAPoint{},
	}
	if res.Dates == nil {
		res.Dates = []string{}
	}
	if aligned.Empty() {
		return res
	}

	for _, t := range aligned.Tickers {
		if !aligned.Observed(t) {
			res.Unobserved = append(res.Unobserved, t)
		}
	}

	res.LastDate = aligned.Dates[len(aligned.Dates)-1]
	res.RangeStart = RangeStart(aligned.Dates, in.Range)

	res.Index = BuildIndex(aligned, res.RangeStart, in.Weights)
	res.Lump = LumpAUM(res.Index, lumpAmount)
	res.DCA = DCA(res.Index, initial, monthly)
	res.LumpExtremes = LumpExtremes(res.Index, lumpAmount)
	res.DCAExtremes = DCAExtremes(res.DCA)
	res.Stats = Summarize(res.Index)

	switch mode {
	case ModeDCA:
		res.Active = res.DCAExtremes
		if n := len(res.DCA); n > 0 {
			res.CurrentAUM = res.DCA[n-1].AUM
			res.Invested = res.DCA[n-1].Contrib
		}
	default:
		res.Active = res.LumpExtremes
		res.Invested = lumpAmount
		if n := len(res.Lump); n > 0 {
			res.CurrentAUM = res.Lump[n-1].AUM
		}
	}

	return res
}

func clampAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(-MaxAmount, math.Min(v, MaxAmount))
}
