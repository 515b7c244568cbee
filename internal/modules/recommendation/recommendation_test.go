package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogue(t *testing.T) {
	assert.Len(t, Catalogue, 43)

	seen := map[string]bool{}
	for _, c := range Catalogue {
		assert.False(t, seen[c.Ticker], "duplicate %s", c.Ticker)
		seen[c.Ticker] = true
		for _, v := range c.Profile {
			assert.True(t, v >= 0 && v <= 5, "%s profile out of range", c.Ticker)
		}
	}

	c, ok := Lookup("7203.T")
	require.True(t, ok)
	assert.Equal(t, "トヨタ自動車", c.Name)

	_, ok = Lookup("NOPE")
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		contains []string
		count    int
	}{
		{name: "empty returns all", query: "", count: len(Catalogue)},
		{name: "ticker case-insensitive", query: "qqq", contains: []string{"QQQ"}},
		{name: "name match", query: "トヨタ", contains: []string{"7203.T"}, count: 1},
		{name: "tag match", query: "債券", contains: []string{"AGG", "TLT"}, count: 2},
		{name: "ascii name case-insensitive", query: "nasdaq", contains: []string{"QQQ"}, count: 1},
		{name: "no match", query: "zzz", count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(tt.query)
			assert.NotNil(t, got)
			if tt.count > 0 || len(tt.contains) == 0 {
				assert.Len(t, got, tt.count)
			}
			tickers := make([]string, len(got))
			for i, c := range got {
				tickers[i] = c.Ticker
			}
			for _, want := range tt.contains {
				assert.Contains(t, tickers, want)
			}
		})
	}
}

func TestFilter_DoesNotAliasCatalogue(t *testing.T) {
	got := Filter("")
	got[0].Ticker = "CHANGED"
	assert.Equal(t, "SPY", Catalogue[0].Ticker)
}

func TestRank_DefaultWeights(t *testing.T) {
	ranked := Rank(DefaultAxisWeights, 0)
	require.Len(t, ranked, DefaultTopN)

	// 8058.T and 8031.T both sum to 17, the catalogue maximum
	assert.Equal(t, "8058.T", ranked[0].Ticker)
	assert.Equal(t, "8031.T", ranked[1].Ticker)
	assert.Equal(t, 51.0, ranked[0].Score)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRank_StableOnTies(t *testing.T) {
	// Only the dividend axis counts: HDV, VYM, 9434.T and 2914.T all score 5
	ranked := Rank([5]float64{0, 0, 1, 0, 0}, 4)
	require.Len(t, ranked, 4)

	got := []string{ranked[0].Ticker, ranked[1].Ticker, ranked[2].Ticker, ranked[3].Ticker}
	assert.Equal(t, []string{"HDV", "VYM", "9434.T", "2914.T"}, got)
}

func TestRank_LimitAboveCatalogue(t *testing.T) {
	assert.Len(t, Rank(DefaultAxisWeights, 500), len(Catalogue))
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name    string
		answers Answers
		style   Style
		first   string
	}{
		{name: "high risk wins over caution", answers: Answers{"risk": "high", "lossAversion": "loss", "income": "stable"}, style: StyleGrowth, first: "QQQ"},
		{name: "low risk", answers: Answers{"risk": "low"}, style: StyleStable, first: "SPY"},
		{name: "loss averse", answers: Answers{"risk": "medium", "lossAversion": "loss"}, style: StyleStable},
		{name: "prefers stable income", answers: Answers{"risk": "medium", "income": "stable"}, style: StyleStable},
		{name: "balanced", answers: Answers{"risk": "medium", "lossAversion": "gain", "income": "lottery"}, style: StyleBalanced},
		{name: "no answers", answers: Answers{}, style: StyleBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diagnose(tt.answers)
			assert.Equal(t, tt.style, d.Style)

			sum := 0
			for _, h := range d.Basket {
				sum += h.Weight
				assert.NotEmpty(t, h.Name, "%s should be named from the catalogue", h.Ticker)
			}
			assert.Equal(t, 100, sum)

			if tt.first != "" {
				assert.Equal(t, tt.first, d.Basket[0].Ticker)
			}
		})
	}
}

func TestDiagnose_DoesNotShareBaskets(t *testing.T) {
	d := Diagnose(Answers{"risk": "high"})
	d.Basket[0].Weight = 99

	again := Diagnose(Answers{"risk": "high"})
	assert.Equal(t, 40, again.Basket[0].Weight)
}

func TestDiagnose_Profile(t *testing.T) {
	d := Diagnose(Answers{"risk": "low", "lossAversion": "loss", "income": "lottery", "amount": "mid"})

	assert.Equal(t, []AxisScore{
		{"安定", 5},
		{"成長", 3},
		{"損失回避性", 5},
		{"夢志向", 5},
		{"投資余力", 3},
	}, d.Profile)

	d = Diagnose(Answers{"risk": "high", "amount": "large"})
	assert.Equal(t, 2, d.Profile[0].Value)
	assert.Equal(t, 5, d.Profile[1].Value)
	assert.Equal(t, 5, d.Profile[4].Value)

	d = Diagnose(Answers{})
	assert.Equal(t, 1, d.Profile[4].Value)
}

func TestAnswersValidate(t *testing.T) {
	assert.NoError(t, Answers{"risk": "low", "amount": "large"}.Validate())
	assert.NoError(t, Answers{}.Validate())
	assert.NoError(t, Answers{"unrelated": "x"}.Validate())

	err := Answers{"risk": "extreme"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

type recordingLoader struct {
	rows    []domain.PriceRecord
	tickers []string
	from    string
}

func (l *recordingLoader) Load(ctx context.Context, tickers []string, from string) []domain.PriceRecord {
	l.tickers = tickers
	l.from = from
	return l.rows
}

func TestBasketFrom(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2020-03-14", BasketFrom(now))
}

func TestBacktester_Run(t *testing.T) {
	loader := &recordingLoader{rows: []domain.PriceRecord{
		{Date: "2024-01-02", Ticker: "SPY", Close: 100},
		{Date: "2024-01-02", Ticker: "QQQ", Close: 50},
		{Date: "2024-01-03", Ticker: "SPY", Close: 110},
		{Date: "2024-01-03", Ticker: "QQQ", Close: 55},
	}}
	b := NewBacktester(loader)
	b.now = func() time.Time { return time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC) }

	d := Diagnose(Answers{"risk": "high"})
	res := b.Run(context.Background(), d)

	assert.Equal(t, "2020-01-10", loader.from)
	assert.Equal(t, d.Tickers(), loader.tickers)
	assert.Equal(t, simulation.ModeLump, res.Mode)
	assert.Equal(t, float64(BasketAmount), res.Invested)
	assert.Equal(t, "2024-01-02", res.RangeStart)

	// Every observed ticker rose 10%; the unobserved ones stay flat at 1.
	// Weights: QQQ 40, SPY 25, others 35 => 0.65*1.1 + 0.35 = 1.065
	require.Len(t, res.Lump, 2)
	assert.InDelta(t, BasketAmount, res.Lump[0].AUM, 1e-6)
	assert.InDelta(t, 1_065_000, res.CurrentAUM, 1e-6)
}

func TestBacktester_EmptyDataset(t *testing.T) {
	b := NewBacktester(&recordingLoader{})
	res := b.Run(context.Background(), Diagnose(Answers{}))

	assert.Empty(t, res.Dates)
	assert.Zero(t, res.CurrentAUM)
}
