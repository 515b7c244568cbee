package allocation

import (
	"errors"
	"fmt"
)

// ErrUnknownOp is returned for an edit operation that does not exist
var ErrUnknownOp = errors.New("unknown allocation op")

// Op names an allocation edit
type Op string

const (
	OpAdd        Op = "add"
	OpRemove     Op = "remove"
	OpSetWeight  Op = "set_weight"
	OpToggleLock Op = "toggle_lock"
	OpEqual      Op = "equal"
)

// Edit is one serialisable allocation change. Add accepts either Ticker
// or Tickers.
type Edit struct {
	Op      Op       `json:"op"`
	Ticker  string   `json:"ticker,omitempty"`
	Tickers []string `json:"tickers,omitempty"`
	Value   int      `json:"value,omitempty"`
}

// Apply performs the edit and returns the new allocation
func (a Allocation) Apply(e Edit) (Allocation, error) {
	switch e.Op {
	case OpAdd:
		out := a.AddMany(e.Tickers...)
		if e.Ticker != "" {
			out = out.Add(e.Ticker)
		}
		return out, nil
	case OpRemove:
		return a.Remove(e.Ticker), nil
	case OpSetWeight:
		return a.SetWeight(e.Ticker, e.Value), nil
	case OpToggleLock:
		return a.ToggleLock(e.Ticker), nil
	case OpEqual:
		return a.Equal(), nil
	default:
		return a, fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
}
