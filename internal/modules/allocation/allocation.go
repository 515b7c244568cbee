// Package allocation edits a ticker basket and its integer percentage weights.
// Every edit returns a new Allocation whose weights sum to 100 when the
// basket is non-empty and at least one ticker is free to absorb rounding.
package allocation

import (
	"math"
	"strings"
)

// Allocation is an ordered basket with integer percentage weights.
type Allocation struct {
	Tickers []string        `json:"tickers"`
	Weights map[string]int  `json:"weights"`
	Locked  map[string]bool `json:"locked,omitempty"`
}

// New builds an equally weighted basket.
func New(tickers ...string) Allocation {
	a := Allocation{Weights: map[string]int{}, Locked: map[string]bool{}}
	for _, t := range tickers {
		if sym := normalize(t); sym != "" && !a.Has(sym) {
			a.Tickers = append(a.Tickers, sym)
		}
	}
	return a.Equal()
}

func normalize(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}

func (a Allocation) clone() Allocation {
	out := Allocation{
		Tickers: append([]string(nil), a.Tickers...),
		Weights: make(map[string]int, len(a.Weights)),
		Locked:  make(map[string]bool, len(a.Locked)),
	}
	for k, v := range a.Weights {
		out.Weights[k] = v
	}
	for k, v := range a.Locked {
		if v {
			out.Locked[k] = true
		}
	}
	return out
}

// Has reports whether the basket contains the ticker.
func (a Allocation) Has(sym string) bool {
	for _, t := range a.Tickers {
		if t == sym {
			return true
		}
	}
	return false
}

// Sum returns the total of all weights.
func (a Allocation) Sum() int {
	total := 0
	for _, t := range a.Tickers {
		total += a.Weights[t]
	}
	return total
}

// Add appends a ticker, scaling existing weights by n/(n+1) and giving the
// newcomer the remainder. Empty or already present tickers are ignored.
func (a Allocation) Add(sym string) Allocation {
	sym = normalize(sym)
	if sym == "" || a.Has(sym) {
		return a
	}

	out := a.clone()
	nOld := len(out.Tickers)
	nNew := nOld + 1
	scale := float64(nOld) / float64(nNew)

	weights := make(map[string]int, nNew)
	sum := 0
	for _, t := range out.Tickers {
		weights[t] = int(math.Floor(float64(a.Weights[t]) * scale))
		sum += weights[t]
	}
	weights[sym] = max(0, 100-sum)

	out.Tickers = append(out.Tickers, sym)
	out.Weights = weights
	return out
}

// AddMany adds tickers one at a time.
func (a Allocation) AddMany(syms ...string) Allocation {
	for _, s := range syms {
		a = a.Add(s)
	}
	return a
}

// Remove drops a ticker and renormalizes the rest to 100. When the rest
// sums to zero they are split equally. The rounding difference goes to
// the first remaining ticker.
func (a Allocation) Remove(sym string) Allocation {
	sym = normalize(sym)
	if !a.Has(sym) {
		return a
	}

	out := a.clone()
	rest := make([]string, 0, len(out.Tickers)-1)
	for _, t := range out.Tickers {
		if t != sym {
			rest = append(rest, t)
		}
	}
	out.Tickers = rest
	delete(out.Locked, sym)

	out.Weights = make(map[string]int, len(rest))
	if len(rest) == 0 {
		return out
	}

	sum := 0
	for _, t := range rest {
		sum += a.Weights[t]
	}

	total := 0
	for _, t := range rest {
		if sum > 0 {
			out.Weights[t] = int(math.Round(float64(a.Weights[t]) * 100 / float64(sum)))
		} else {
			out.Weights[t] = 100 / len(rest)
		}
		total += out.Weights[t]
	}
	out.Weights[rest[0]] += 100 - total

	return out
}

// SetWeight sets one ticker's weight and spreads what is left of 100 over
// the other unlocked tickers. The value is clamped so locked weights are
// never exceeded. Locked or unknown tickers are left unchanged.
func (a Allocation) SetWeight(sym string, value int) Allocation {
	sym = normalize(sym)
	if !a.Has(sym) || a.Locked[sym] {
		return a
	}

	out := a.clone()

	lockedSum := 0
	var free []string
	for _, t := range out.Tickers {
		switch {
		case out.Locked[t]:
			lockedSum += out.Weights[t]
		case t != sym:
			free = append(free, t)
		}
	}

	value = min(max(value, 0), max(100-lockedSum, 0))
	out.Weights[sym] = value

	if len(free) == 0 {
		return out
	}

	share := max(100-lockedSum-value, 0) / len(free)
	for _, t := range free {
		out.Weights[t] = share
	}
	if diff := 100 - out.Sum(); diff != 0 {
		out.Weights[free[0]] += diff
	}

	return out
}

// ToggleLock flips whether a ticker's weight is fixed during SetWeight.
func (a Allocation) ToggleLock(sym string) Allocation {
	sym = normalize(sym)
	if !a.Has(sym) {
		return a
	}
	out := a.clone()
	if out.Locked[sym] {
		delete(out.Locked, sym)
	} else {
		out.Locked[sym] = true
	}
	return out
}

// Equal splits 100 evenly, giving the remainder to the first ticker.
func (a Allocation) Equal() Allocation {
	out := a.clone()
	out.Weights = make(map[string]int, len(out.Tickers))
	if len(out.Tickers) == 0 {
		return out
	}

	share := 100 / len(out.Tickers)
	for _, t := range out.Tickers {
		out.Weights[t] = share
	}
	out.Weights[out.Tickers[0]] += 100 - share*len(out.Tickers)
	return out
}

// FloatWeights returns the weights in the form the simulator consumes.
func (a Allocation) FloatWeights() map[string]float64 {
	out := make(map[string]float64, len(a.Tickers))
	for _, t := range a.Tickers {
		out[t] = float64(a.Weights[t])
	}
	return out
}
