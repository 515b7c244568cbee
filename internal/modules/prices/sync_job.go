package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	syncConcurrency = 4
	syncTimeout     = 10 * time.Minute
	// syncLookback is how far back a ticker with no local rows starts.
	syncLookback = 10
)

// SyncJob copies closes for a fixed ticker list from a remote source into
// the local repository, continuing from the latest stored date.
type SyncJob struct {
	remote   Source
	repo     *Repository
	tickers  []string
	pageSize int
	now      func() time.Time
	log      zerolog.Logger
}

// NewSyncJob creates a new price sync job
func NewSyncJob(remote Source, repo *Repository, tickers []string, pageSize int, log zerolog.Logger) *SyncJob {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &SyncJob{
		remote:   remote,
		repo:     repo,
		tickers:  tickers,
		pageSize: pageSize,
		now:      time.Now,
		log:      log.With().Str("job", "price_sync").Logger(),
	}
}

// Name returns the job name for scheduling and logging.
func (j *SyncJob) Name() string {
	return "price_sync"
}

// Run syncs all tickers, a few at a time. The first failure cancels the rest.
func (j *SyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	return j.RunContext(ctx)
}

// RunContext is Run with a caller-supplied context.
func (j *SyncJob) RunContext(ctx context.Context) error {
	if len(j.tickers) == 0 {
		j.log.Debug().Msg("No tickers configured, skipping sync")
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)

	counts := make([]int, len(j.tickers))
	for i, ticker := range j.tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			n, err := j.syncTicker(ctx, ticker)
			if err != nil {
				return fmt.Errorf("sync %s: %w", ticker, err)
			}
			counts[i] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		j.log.Error().Err(err).Msg("Price sync failed")
		return err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	j.log.Info().
		Int("tickers", len(j.tickers)).
		Int("rows", total).
		Msg("Price sync completed")

	return nil
}

func (j *SyncJob) syncTicker(ctx context.Context, ticker string) (int, error) {
	from, err := j.repo.LatestDate(ctx, ticker)
	if err != nil {
		return 0, err
	}
	if from == "" {
		from = j.now().AddDate(-syncLookback, 0, 0).Format(domain.DateLayout)
	}

	rows, err := FetchAll(ctx, j.remote, Query{Tickers: []string{ticker}, From: from, Ascending: true}, j.pageSize)
	if err != nil {
		return 0, err
	}

	if err := j.repo.Upsert(rows); err != nil {
		return 0, err
	}

	j.log.Debug().
		Str("ticker", ticker).
		Str("from", from).
		Int("rows", len(rows)).
		Msg("Synced ticker")

	return len(rows), nil
}
