package prices

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// memorySource pages over a fixed row set the way the remote table does.
type memorySource struct {
	mu    sync.Mutex
	rows  []domain.PriceRecord
	calls []int // offsets requested
}

func (s *memorySource) FetchPage(ctx context.Context, q Query, offset, limit int) ([]domain.PriceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, offset)

	wanted := make(map[string]bool, len(q.Tickers))
	for _, t := range q.Tickers {
		wanted[t] = true
	}

	var match []domain.PriceRecord
	for _, r := range s.rows {
		if wanted[r.Ticker] && (q.From == "" || r.Date >= q.From) {
			match = append(match, r)
		}
	}
	sort.SliceStable(match, func(i, j int) bool {
		if match[i].Date != match[j].Date {
			if q.Ascending {
				return match[i].Date < match[j].Date
			}
			return match[i].Date > match[j].Date
		}
		return match[i].Ticker < match[j].Ticker
	})

	if offset >= len(match) {
		return []domain.PriceRecord{}, nil
	}
	end := min(offset+limit, len(match))
	return match[offset:end], nil
}

// MockSource is a testify mock of Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchPage(ctx context.Context, q Query, offset, limit int) ([]domain.PriceRecord, error) {
	args := m.Called(ctx, q, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PriceRecord), args.Error(1)
}

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "prices.db"),
		Profile: database.ProfileStandard,
		Name:    "prices",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db.Conn(), testLogger())
}

func rec(date, ticker string, close float64) domain.PriceRecord {
	return domain.PriceRecord{Date: date, Ticker: ticker, Close: close}
}
