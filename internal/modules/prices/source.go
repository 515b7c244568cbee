// Package prices fetches daily closing prices from a paginated source and
// keeps a local copy of them.
package prices

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/folio/internal/domain"
)

// DefaultPageSize is the row limit of one page request.
const DefaultPageSize = 1000

// ErrNoTickers is returned when a query names no tickers.
var ErrNoTickers = errors.New("no tickers requested")

// Query selects rows for a set of tickers on or after From (inclusive).
// An empty From means no lower bound.
type Query struct {
	Tickers   []string
	From      string
	Ascending bool
}

// Source returns one page of price rows.
type Source interface {
	FetchPage(ctx context.Context, q Query, offset, limit int) ([]domain.PriceRecord, error)
}

// TickerSearcher looks up catalogue entries by ticker or name.
type TickerSearcher interface {
	SearchTickers(ctx context.Context, query string, limit int) ([]domain.TickerInfo, error)
}

// FetchAll concatenates pages until a page shorter than pageSize comes back.
// Any page error aborts the whole fetch.
func FetchAll(ctx context.Context, src Source, q Query, pageSize int) ([]domain.PriceRecord, error) {
	if len(q.Tickers) == 0 {
		return nil, ErrNoTickers
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []domain.PriceRecord
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := src.FetchPage(ctx, q, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch prices at offset %d: %w", offset, err)
		}

		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}

	if all == nil {
		all = []domain.PriceRecord{}
	}
	return all, nil
}
