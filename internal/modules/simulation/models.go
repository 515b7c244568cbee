// Package simulation builds the weighted portfolio index from aligned prices
// and derives lump-sum and DCA projections with their gain/loss extremes.
package simulation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMode is returned when a mode name is not lump or dca
	ErrUnknownMode = errors.New("unknown simulation mode")
	// ErrUnknownRange is returned when a range name is not a known window
	ErrUnknownRange = errors.New("unknown range")
)

// Mode selects the investment strategy
type Mode string

const (
	ModeLump Mode = "lump"
	ModeDCA  Mode = "dca"
)

// ParseMode validates a mode name (case-insensitive)
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLump, ModeDCA:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Range selects the lookback window ending at the last date
type Range string

const (
	Range1M  Range = "1M"
	Range3M  Range = "3M"
	Range1Y  Range = "1Y"
	Range3Y  Range = "3Y"
	Range5Y  Range = "5Y"
	RangeMax Range = "MAX"
)

// rangeMonths is the calendar offset of each bounded window
var rangeMonths = map[Range]int{
	Range1M: 1,
	Range3M: 3,
	Range1Y: 12,
	Range3Y: 36,
	Range5Y: 60,
}

// Ranges lists the selectable windows in display order
var Ranges = []Range{Range1M, Range3M, Range1Y, Range3Y, Range5Y, RangeMax}

// ParseRange validates a range name (case-insensitive)
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToUpper(strings.TrimSpace(s)))
	if r == RangeMax {
		return r, nil
	}
	if _, ok := rangeMonths[r]; ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRange, s)
}

// IndexPoint is one date of the weighted index, anchored at 1.0 on the window start
type IndexPoint struct {
	Date   string             `json:"date"`
	Values map[string]float64 `json:"values"`
	Total  float64            `json:"total"`
}

// AUMPoint is the lump-sum holding value on a date
type AUMPoint struct {
	Date string  `json:"date"`
	AUM  float64 `json:"aum"`
}

// DCAPoint is one date of the DCA sweep
type DCAPoint struct {
	Date    string  `json:"date"`
	Idx     float64 `json:"idx"`
	AUM     float64 `json:"aum"`
	Contrib float64 `json:"contrib"`
}

// ExtremePoint marks the date of a maximum gain or loss
type ExtremePoint struct {
	Date string  `json:"date"`
	Amt  float64 `json:"amt"`
	Pct  float64 `json:"pct"`
	Y    float64 `json:"y"`
}

// Extremes is a max gain / max loss pair
type Extremes struct {
	MaxGain ExtremePoint `json:"max_gain"`
	MaxLoss ExtremePoint `json:"max_loss"`
}

// Inputs is everything a simulation depends on besides price rows.
// Amounts are in yen.
type Inputs struct {
	Tickers    []string           `json:"tickers"`
	Weights    map[string]float64 `json:"weights"`
	Mode       Mode               `json:"mode"`
	Range      Range              `json:"range"`
	LumpAmount float64            `json:"lump_amount"`
	DCAInitial float64            `json:"dca_initial"`
	DCAMonthly float64            `json:"dca_monthly"`
}

// Stats summarises the windowed index
type Stats struct {
	TotalReturn   float64 `json:"total_return"`
	AnnualizedVol float64 `json:"annualized_vol"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	TradingDays   int     `json:"trading_days"`
}

// Result is the immutable output of one simulation run
type Result struct {
	Dates        []string     `json:"dates"`
	LastDate     string       `json:"last_date"`
	RangeStart   string       `json:"range_start"`
	Mode         Mode         `json:"mode"`
	Index        []IndexPoint `json:"index"`
	Lump         []AUMPoint   `json:"lump"`
	DCA          []DCAPoint   `json:"dca"`
	CurrentAUM   float64      `json:"current_aum"`
	Invested     float64      `json:"invested"`
	LumpExtremes Extremes     `json:"lump_extremes"`
	DCAExtremes  Extremes     `json:"dca_extremes"`
	Active       Extremes     `json:"active_extremes"`
	Stats        Stats        `json:"stats"`
	// Unobserved lists requested tickers with no valid close at all
	Unobserved []string `json:"unobserved,omitempty"`
}
