package session

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/display"
	"github.com/aristath/folio/internal/modules/simulation"
	"github.com/rs/zerolog"
)

// PriceLoader loads every row for a ticker set. It never fails: a
// transport error is reported as an empty row set.
type PriceLoader interface {
	Load(ctx context.Context, tickers []string, from string) []domain.PriceRecord
}

// Controller owns one session's state and its fetched price rows.
//
// Every change bumps the state version. A change to the ticker set starts
// a fetch tagged with a fetch generation; when the fetch returns it is
// applied only if no later change started another fetch or returned to
// the rows already held. Any other change recomputes immediately from the
// held rows.
type Controller struct {
	loader PriceLoader
	log    zerolog.Logger

	mu       sync.Mutex
	state    State
	version  uint64
	rows     []domain.PriceRecord
	rowsKey  string
	fetchGen uint64
	inFlight string
	last     Snapshot
}

// NewController creates a controller holding the given state. No rows
// are held yet, so the first Apply or Refresh fetches.
func NewController(loader PriceLoader, state State, log zerolog.Logger) *Controller {
	return &Controller{
		loader:  loader,
		log:     log.With().Str("component", "session_controller").Logger(),
		state:   state,
		rowsKey: "\x00",
	}
}

// State returns the current inputs
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Last returns the most recently produced snapshot
func (c *Controller) Last() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Refresh recomputes the current state, fetching when the held rows do
// not cover its tickers.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	return c.Apply(ctx, Change{})
}

// Apply merges a change and returns the snapshot it produces.
//
// ErrPending is returned when the change only adjusts inputs while a fetch
// for the same tickers is running; that fetch's snapshot will include it.
// ErrSuperseded is returned when this call's fetch finished after a newer
// change made it obsolete; its rows are dropped. When ctx ends during the
// fetch its error is returned and nothing is kept. An empty basket never
// fetches and yields an empty snapshot.
func (c *Controller) Apply(ctx context.Context, change Change) (Snapshot, error) {
	c.mu.Lock()
	next, err := c.state.Merge(change)
	if err != nil {
		c.mu.Unlock()
		return Snapshot{}, err
	}
	c.state = next
	c.version++

	if len(next.Allocation.Tickers) == 0 {
		// nothing to fetch: any fetch in flight is obsolete
		c.abandonLocked()
		c.rows = nil
		c.rowsKey = ""
		snap := c.computeLocked()
		c.mu.Unlock()
		return snap, nil
	}

	key := tickerKey(next.Allocation.Tickers)
	switch {
	case key == c.rowsKey:
		// back to the held rows: whatever is in flight is now obsolete
		c.abandonLocked()
		snap := c.computeLocked()
		c.mu.Unlock()
		return snap, nil
	case c.inFlight != "" && key == c.inFlight:
		c.mu.Unlock()
		return Snapshot{}, ErrPending
	}

	c.fetchGen++
	gen := c.fetchGen
	c.inFlight = key
	tickers := append([]string(nil), next.Allocation.Tickers...)
	c.mu.Unlock()

	rows := c.loader.Load(ctx, tickers, "")

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.fetchGen {
		c.log.Debug().
			Uint64("generation", gen).
			Uint64("current", c.fetchGen).
			Msg("Dropping superseded price fetch")
		return Snapshot{}, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		// rows of a cancelled fetch are incomplete; the next change refetches
		c.inFlight = ""
		return Snapshot{}, err
	}

	c.rows = rows
	c.rowsKey = key
	c.inFlight = ""
	return c.computeLocked(), nil
}

// abandonLocked invalidates the fetch in flight, if any.
func (c *Controller) abandonLocked() {
	if c.inFlight != "" {
		c.fetchGen++
		c.inFlight = ""
	}
}

func (c *Controller) computeLocked() Snapshot {
	res := simulation.Simulate(c.rows, c.state.Inputs())
	c.last = Snapshot{
		Version: c.version,
		State:   c.state,
		Result:  res,
		Summary: display.Summarize(res),
	}
	return c.last
}

// tickerKey identifies a ticker set independent of order
func tickerKey(tickers []string) string {
	sorted := append([]string(nil), tickers...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
