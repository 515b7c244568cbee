package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := New("spy", " qqq ", "SPY", "")

	assert.Equal(t, []string{"SPY", "QQQ"}, a.Tickers)
	assert.Equal(t, map[string]int{"SPY": 50, "QQQ": 50}, a.Weights)
	assert.Equal(t, 100, a.Sum())

	empty := New()
	assert.Empty(t, empty.Tickers)
	assert.Equal(t, 0, empty.Sum())
}

func TestAdd(t *testing.T) {
	a := New().Add("SPY")
	assert.Equal(t, map[string]int{"SPY": 100}, a.Weights)

	a = a.Add("QQQ")
	assert.Equal(t, map[string]int{"SPY": 50, "QQQ": 50}, a.Weights)

	a = a.Add("vti")
	assert.Equal(t, []string{"SPY", "QQQ", "VTI"}, a.Tickers)
	assert.Equal(t, map[string]int{"SPY": 33, "QQQ": 33, "VTI": 34}, a.Weights)
	assert.Equal(t, 100, a.Sum())
}

func TestAdd_IgnoresDuplicatesAndBlanks(t *testing.T) {
	a := New("SPY")

	assert.Equal(t, a, a.Add(" spy "))
	assert.Equal(t, a, a.Add("  "))
}

func TestAdd_DoesNotMutateReceiver(t *testing.T) {
	a := New("SPY")
	_ = a.Add("QQQ")

	assert.Equal(t, []string{"SPY"}, a.Tickers)
	assert.Equal(t, 100, a.Weights["SPY"])
}

func TestAddMany(t *testing.T) {
	a := New().AddMany("SPY", "VTI", "1306.T", "AGG", "GLD")

	assert.Len(t, a.Tickers, 5)
	assert.Equal(t, 100, a.Sum())
}

func TestRemove(t *testing.T) {
	a := New().AddMany("SPY", "QQQ", "VTI") // 33/33/34

	tests := []struct {
		name string
		sym  string
		want map[string]int
	}{
		{"last", "VTI", map[string]int{"SPY": 50, "QQQ": 50}},
		{"first", "SPY", map[string]int{"QQQ": 49, "VTI": 51}},
		{"lower case", "qqq", map[string]int{"SPY": 49, "VTI": 51}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Remove(tt.sym)
			assert.Equal(t, tt.want, got.Weights)
			assert.Equal(t, 100, got.Sum())
		})
	}
}

func TestRemove_ZeroRemainderSplitsEqually(t *testing.T) {
	a := Allocation{
		Tickers: []string{"A", "B", "C", "D"},
		Weights: map[string]int{"A": 0, "B": 0, "C": 0, "D": 100},
	}

	got := a.Remove("D")

	assert.Equal(t, map[string]int{"A": 34, "B": 33, "C": 33}, got.Weights)
}

func TestRemove_LastAndUnknown(t *testing.T) {
	a := New("SPY")

	got := a.Remove("SPY")
	assert.Empty(t, got.Tickers)
	assert.Empty(t, got.Weights)

	assert.Equal(t, a, a.Remove("QQQ"))
}

func TestSetWeight(t *testing.T) {
	a := New().AddMany("A", "B", "C")

	got := a.SetWeight("A", 50)
	assert.Equal(t, map[string]int{"A": 50, "B": 25, "C": 25}, got.Weights)

	got = a.SetWeight("A", 51)
	assert.Equal(t, map[string]int{"A": 51, "B": 25, "C": 24}, got.Weights)
	assert.Equal(t, 100, got.Sum())

	got = a.SetWeight("A", 150)
	assert.Equal(t, map[string]int{"A": 100, "B": 0, "C": 0}, got.Weights)

	got = a.SetWeight("A", -5)
	assert.Equal(t, 0, got.Weights["A"])
	assert.Equal(t, 100, got.Sum())
}

func TestSetWeight_RespectsLocks(t *testing.T) {
	a := New().AddMany("A", "B", "C").ToggleLock("B") // 33/33/34, B locked

	got := a.SetWeight("A", 50)
	assert.Equal(t, map[string]int{"A": 50, "B": 33, "C": 17}, got.Weights)

	got = a.SetWeight("A", 90)
	assert.Equal(t, map[string]int{"A": 67, "B": 33, "C": 0}, got.Weights)

	// Locked tickers cannot be moved
	assert.Equal(t, a, a.SetWeight("B", 10))
}

func TestSetWeight_NoFreeTickers(t *testing.T) {
	a := New().AddMany("A", "B").ToggleLock("B") // 50/50

	got := a.SetWeight("A", 20)
	assert.Equal(t, map[string]int{"A": 20, "B": 50}, got.Weights)
}

func TestToggleLock(t *testing.T) {
	a := New("A", "B").ToggleLock("a")
	assert.True(t, a.Locked["A"])

	a = a.ToggleLock("A")
	assert.False(t, a.Locked["A"])

	assert.Equal(t, a, a.ToggleLock("Z"))
}

func TestEqual(t *testing.T) {
	a := Allocation{Tickers: []string{"A", "B", "C"}, Weights: map[string]int{"A": 90, "B": 5, "C": 5}}

	assert.Equal(t, map[string]int{"A": 34, "B": 33, "C": 33}, a.Equal().Weights)
}

func TestFloatWeights(t *testing.T) {
	a := New().AddMany("A", "B", "C")

	assert.Equal(t, map[string]float64{"A": 33, "B": 33, "C": 34}, a.FloatWeights())
}
