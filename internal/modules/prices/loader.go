package prices

import (
	"context"
	"errors"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
)

// Loader fetches every page for a ticker set. Failures are logged and
// yield an empty row set; callers never see transport errors.
type Loader struct {
	source   Source
	pageSize int
	log      zerolog.Logger
}

// NewLoader creates a loader over the given source
func NewLoader(source Source, pageSize int, log zerolog.Logger) *Loader {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Loader{
		source:   source,
		pageSize: pageSize,
		log:      log.With().Str("service", "price_loader").Logger(),
	}
}

// Load returns all rows for tickers on or after from, in ascending date order.
func (l *Loader) Load(ctx context.Context, tickers []string, from string) []domain.PriceRecord {
	tickers = utils.NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return []domain.PriceRecord{}
	}

	defer utils.OperationTimer("load_prices", l.log)()

	rows, err := FetchAll(ctx, l.source, Query{Tickers: tickers, From: from, Ascending: true}, l.pageSize)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			l.log.Debug().Strs("tickers", tickers).Msg("Price fetch cancelled")
		} else {
			l.log.Error().Err(err).Strs("tickers", tickers).Msg("Failed to fetch prices")
		}
		return []domain.PriceRecord{}
	}

	l.log.Debug().
		Strs("tickers", tickers).
		Str("from", from).
		Int("rows", len(rows)).
		Msg("Loaded prices")

	return rows
}
