package recommendation

import (
	"errors"
	"fmt"
)

// ErrInvalidAnswer is returned when an answer is not one of its question's options
var ErrInvalidAnswer = errors.New("invalid answer")

// Option is one selectable answer
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question is one questionnaire step
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Questions is the questionnaire, asked in order
var Questions = []Question{
	{
		ID:   "risk",
		Text: "100万円を1年投資。±20%の振れを想定すると？",
		Options: []Option{
			{"避けたい（安定志向）", "low"},
			{"一部なら挑戦", "medium"},
			{"全額挑戦（成長志向）", "high"},
		},
	},
	{
		ID:   "lossAversion",
		Text: "同じ10万円、損失と利益でどちらが強く響く？",
		Options: []Option{
			{"損失の方がずっと嫌", "loss"},
			{"どちらも同程度", "neutral"},
			{"利益の喜びの方が大きい", "gain"},
		},
	},
	{
		ID:   "income",
		Text: "1%で100万円当選の宝くじ vs 毎月1万円の確実収入",
		Options: []Option{
			{"毎月1万円の確実性を選ぶ", "stable"},
			{"宝くじに夢を賭ける", "lottery"},
		},
	},
	{
		ID:   "amount",
		Text: "“今”株に入れられる目安は？",
		Options: []Option{
			{"10万円以下", "small"},
			{"100万円前後", "mid"},
			{"1000万円以上", "large"},
		},
	},
}

// Answers maps question id to the chosen option value
type Answers map[string]string

// Validate checks every present answer against its question's options.
// Missing answers are allowed and fall through to the balanced basket.
func (a Answers) Validate() error {
	for _, q := range Questions {
		v, ok := a[q.ID]
		if !ok || v == "" {
			continue
		}
		if !q.hasOption(v) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidAnswer, q.ID, v)
		}
	}
	return nil
}

func (q Question) hasOption(v string) bool {
	for _, o := range q.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Style names the rule that produced a basket
type Style string

const (
	StyleGrowth   Style = "growth"
	StyleStable   Style = "stable"
	StyleBalanced Style = "balanced"
)

// AxisScore is one investor profile axis, scored 1-5
type AxisScore struct {
	Axis  string `json:"axis"`
	Value int    `json:"value"`
}

// Holding is one basket entry. Weights across a basket sum to 100.
type Holding struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`
	Weight int    `json:"weight"`
}

// Diagnosis is the questionnaire outcome
type Diagnosis struct {
	Style   Style       `json:"style"`
	Profile []AxisScore `json:"profile"`
	Basket  []Holding   `json:"basket"`
}

// Tickers returns the basket tickers in basket order
func (d Diagnosis) Tickers() []string {
	out := make([]string, len(d.Basket))
	for i, h := range d.Basket {
		out[i] = h.Ticker
	}
	return out
}

// Weights returns the basket weights keyed by ticker
func (d Diagnosis) Weights() map[string]float64 {
	out := make(map[string]float64, len(d.Basket))
	for _, h := range d.Basket {
		out[h.Ticker] = float64(h.Weight)
	}
	return out
}

var baskets = map[Style][]Holding{
	StyleGrowth: {
		{Ticker: "QQQ", Weight: 40},
		{Ticker: "SPY", Weight: 25},
		{Ticker: "8035.T", Weight: 15},
		{Ticker: "7974.T", Weight: 10},
		{Ticker: "VXUS", Weight: 10},
	},
	StyleStable: {
		{Ticker: "SPY", Weight: 25},
		{Ticker: "VTI", Weight: 15},
		{Ticker: "1306.T", Weight: 20},
		{Ticker: "AGG", Weight: 25},
		{Ticker: "GLD", Weight: 15},
	},
	StyleBalanced: {
		{Ticker: "SPY", Weight: 30},
		{Ticker: "VTI", Weight: 20},
		{Ticker: "1306.T", Weight: 20},
		{Ticker: "AGG", Weight: 20},
		{Ticker: "GLD", Weight: 10},
	},
}

// Diagnose scores the investor profile and picks a basket. A high risk
// appetite always wins; otherwise any cautious answer selects the stable
// basket.
func Diagnose(a Answers) Diagnosis {
	style := StyleBalanced
	switch {
	case a["risk"] == "high":
		style = StyleGrowth
	case a["risk"] == "low" || a["lossAversion"] == "loss" || a["income"] == "stable":
		style = StyleStable
	}

	basket := make([]Holding, len(baskets[style]))
	for i, h := range baskets[style] {
		if c, ok := Lookup(h.Ticker); ok {
			h.Name = c.Name
		}
		basket[i] = h
	}

	return Diagnosis{
		Style:   style,
		Profile: profileOf(a),
		Basket:  basket,
	}
}

func profileOf(a Answers) []AxisScore {
	pick := func(cond bool, yes, no int) int {
		if cond {
			return yes
		}
		return no
	}

	capacity := 1
	switch a["amount"] {
	case "large":
		capacity = 5
	case "mid":
		capacity = 3
	}

	return []AxisScore{
		{"安定", pick(a["risk"] == "low", 5, 2)},
		{"成長", pick(a["risk"] == "high", 5, 3)},
		{"損失回避性", pick(a["lossAversion"] == "loss", 5, 2)},
		{"夢志向", pick(a["income"] == "lottery", 5, 1)},
		{"投資余力", capacity},
	}
}
