// Package session keeps one user's simulation inputs and recomputes a
// fresh snapshot whenever they change.
package session

import (
	"errors"

	"github.com/aristath/folio/internal/modules/allocation"
	"github.com/aristath/folio/internal/modules/display"
	"github.com/aristath/folio/internal/modules/simulation"
)

var (
	// ErrSuperseded means a newer change replaced the fetch this call started
	ErrSuperseded = errors.New("superseded by a newer change")
	// ErrPending means the change will be reflected by a fetch already in flight
	ErrPending = errors.New("waiting for in-flight price fetch")
	// ErrNotFound is returned for an unknown session id
	ErrNotFound = errors.New("session not found")
)

// Default inputs of a new session
const (
	DefaultTicker     = "SPY"
	DefaultLumpManYen = 100
	DefaultDCAInitial = 10
	DefaultDCAMonthly = 5
)

// State is the full set of user inputs. Amounts are in yen.
type State struct {
	Allocation allocation.Allocation `json:"allocation"`
	Mode       simulation.Mode       `json:"mode"`
	Range      simulation.Range      `json:"range"`
	LumpAmount float64               `json:"lump_amount"`
	DCAInitial float64               `json:"dca_initial"`
	DCAMonthly float64               `json:"dca_monthly"`
}

// DefaultState is what a new session starts from
func DefaultState() State {
	return State{
		Allocation: allocation.New(DefaultTicker),
		Mode:       simulation.ModeLump,
		Range:      simulation.RangeMax,
		LumpAmount: DefaultLumpManYen * display.ManYen,
		DCAInitial: DefaultDCAInitial * display.ManYen,
		DCAMonthly: DefaultDCAMonthly * display.ManYen,
	}
}

// Inputs converts the state into simulator inputs
func (s State) Inputs() simulation.Inputs {
	return simulation.Inputs{
		Tickers:    append([]string(nil), s.Allocation.Tickers...),
		Weights:    s.Allocation.FloatWeights(),
		Mode:       s.Mode,
		Range:      s.Range,
		LumpAmount: s.LumpAmount,
		DCAInitial: s.DCAInitial,
		DCAMonthly: s.DCAMonthly,
	}
}

// Change is a partial update. Nil fields are left as they are. Amounts
// are typed in 万円 and parsed leniently: an unparsable amount is zero.
type Change struct {
	Edit             *allocation.Edit  `json:"edit,omitempty"`
	Mode             *simulation.Mode  `json:"mode,omitempty"`
	Range            *simulation.Range `json:"range,omitempty"`
	LumpManYen       *string           `json:"lump_man_yen,omitempty"`
	DCAInitialManYen *string           `json:"dca_initial_man_yen,omitempty"`
	DCAMonthlyManYen *string           `json:"dca_monthly_man_yen,omitempty"`
}

// Merge applies the change to a copy of the state
func (s State) Merge(c Change) (State, error) {
	next := s
	if c.Edit != nil {
		a, err := s.Allocation.Apply(*c.Edit)
		if err != nil {
			return s, err
		}
		next.Allocation = a
	}
	if c.Mode != nil {
		m, err := simulation.ParseMode(string(*c.Mode))
		if err != nil {
			return s, err
		}
		next.Mode = m
	}
	if c.Range != nil {
		r, err := simulation.ParseRange(string(*c.Range))
		if err != nil {
			return s, err
		}
		next.Range = r
	}
	if c.LumpManYen != nil {
		next.LumpAmount = display.ParseManYen(*c.LumpManYen)
	}
	if c.DCAInitialManYen != nil {
		next.DCAInitial = display.ParseManYen(*c.DCAInitialManYen)
	}
	if c.DCAMonthlyManYen != nil {
		next.DCAMonthly = display.ParseManYen(*c.DCAMonthlyManYen)
	}
	return next, nil
}

// Snapshot is the immutable outcome of one applied state
type Snapshot struct {
	Version uint64            `json:"version"`
	State   State             `json:"state"`
	Result  simulation.Result `json:"result"`
	Summary display.Summary   `json:"summary"`
}
