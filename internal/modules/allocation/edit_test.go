package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	base := New("SPY", "QQQ")

	tests := []struct {
		name    string
		edit    Edit
		tickers []string
		weights map[string]int
	}{
		{
			name:    "add single",
			edit:    Edit{Op: OpAdd, Ticker: "vti"},
			tickers: []string{"SPY", "QQQ", "VTI"},
			weights: map[string]int{"SPY": 33, "QQQ": 33, "VTI": 34},
		},
		{
			name:    "add many",
			edit:    Edit{Op: OpAdd, Tickers: []string{"VTI", "AGG"}},
			tickers: []string{"SPY", "QQQ", "VTI", "AGG"},
		},
		{
			name:    "remove",
			edit:    Edit{Op: OpRemove, Ticker: "QQQ"},
			tickers: []string{"SPY"},
			weights: map[string]int{"SPY": 100},
		},
		{
			name:    "set weight",
			edit:    Edit{Op: OpSetWeight, Ticker: "SPY", Value: 70},
			tickers: []string{"SPY", "QQQ"},
			weights: map[string]int{"SPY": 70, "QQQ": 30},
		},
		{
			name:    "equal",
			edit:    Edit{Op: OpEqual},
			tickers: []string{"SPY", "QQQ"},
			weights: map[string]int{"SPY": 50, "QQQ": 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base.Apply(tt.edit)
			require.NoError(t, err)
			assert.Equal(t, tt.tickers, got.Tickers)
			assert.Equal(t, 100, got.Sum())
			if tt.weights != nil {
				assert.Equal(t, tt.weights, got.Weights)
			}
		})
	}
}

func TestApply_ToggleLock(t *testing.T) {
	got, err := New("SPY", "QQQ").Apply(Edit{Op: OpToggleLock, Ticker: "spy"})
	require.NoError(t, err)
	assert.True(t, got.Locked["SPY"])
}

func TestApply_UnknownOp(t *testing.T) {
	a := New("SPY")
	got, err := a.Apply(Edit{Op: "shuffle"})
	assert.ErrorIs(t, err, ErrUnknownOp)
	assert.Equal(t, a, got)
}

func TestApply_AddToEmpty(t *testing.T) {
	got, err := Allocation{}.Apply(Edit{Op: OpAdd, Ticker: "SPY"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SPY": 100}, got.Weights)
}
