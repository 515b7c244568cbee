package recommendation

import (
	"context"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/simulation"
)

const (
	// BasketAmount is the lump sum a recommended basket is simulated with
	BasketAmount = 1_000_000
	// BasketYears is how far back a basket simulation reaches
	BasketYears = 5
)

// PriceLoader loads every row for a ticker set from a date onwards
type PriceLoader interface {
	Load(ctx context.Context, tickers []string, from string) []domain.PriceRecord
}

// Backtester replays a diagnosed basket over recent history
type Backtester struct {
	loader PriceLoader
	now    func() time.Time
}

// NewBacktester creates a basket backtester
func NewBacktester(loader PriceLoader) *Backtester {
	return &Backtester{loader: loader, now: time.Now}
}

// BasketFrom is the first date fetched for a basket simulation run at now
func BasketFrom(now time.Time) string {
	return now.UTC().AddDate(-BasketYears, 0, 0).Format(domain.DateLayout)
}

// Run simulates the basket as a lump-sum investment over the full window
// of fetched history. A load failure gives an empty result.
func (b *Backtester) Run(ctx context.Context, d Diagnosis) simulation.Result {
	tickers := d.Tickers()
	rows := b.loader.Load(ctx, tickers, BasketFrom(b.now()))

	return simulation.Simulate(rows, simulation.Inputs{
		Tickers:    tickers,
		Weights:    d.Weights(),
		Mode:       simulation.ModeLump,
		Range:      simulation.RangeMax,
		LumpAmount: BasketAmount,
	})
}
