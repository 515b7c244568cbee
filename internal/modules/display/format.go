// Package display formats simulation results for the presentation layer:
// yen amounts, percentages, headline badges and date labels.
package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/simulation"
	"github.com/shopspring/decimal"
)

// ManYen is the number of yen in one 万円 input unit.
const ManYen = 10000

// TodayLabel replaces the last date on axes and tooltips.
const TodayLabel = "今日"

var (
	manYen  = decimal.NewFromInt(ManYen)
	yenSuff = money.NewFormatter(0, ".", ",", "", "1円")
)

// ParseManYen converts a 万円 text field to yen.
// Anything that does not parse as a number counts as zero.
func ParseManYen(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	v, _ := d.Mul(manYen).Round(0).Float64()
	return v
}

func roundYen(n float64) int64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int64(math.Round(n))
}

// Yen formats an amount as ¥1,234,567.
func Yen(n float64) string {
	v := roundYen(n)
	if v < 0 {
		return "-" + money.New(-v, money.JPY).Display()
	}
	return money.New(v, money.JPY).Display()
}

// SignedYen formats a gain or loss as +1,234円 or -1,234円.
func SignedYen(n float64) string {
	v := roundYen(n)
	sign := "+"
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + yenSuff.Format(v)
}

// Percent formats a fractional return with two decimals: 0.1234 => 12.34%.
func Percent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	return fmt.Sprintf("%.2f%%", p*100)
}

// DateLabel returns TodayLabel for the last date and the date otherwise.
func DateLabel(date, lastDate string) string {
	if date != "" && date == lastDate {
		return TodayLabel
	}
	return date
}

// Headline is the badge text summarising the active mode.
func Headline(res simulation.Result) string {
	if res.Mode == simulation.ModeDCA {
		return fmt.Sprintf("開始以来の元本: %s ／ 今日の運用額: %s", Yen(res.Invested), Yen(res.CurrentAUM))
	}
	return fmt.Sprintf("開始時に %s 投資していた時の今日の運用額: %s", Yen(res.Invested), Yen(res.CurrentAUM))
}

// ExtremeLines renders the max gain and max loss lines of the active mode.
func ExtremeLines(ext simulation.Extremes) [2]string {
	return [2]string{
		extremeLine("最大含み益", ext.MaxGain),
		extremeLine("最大含み損", ext.MaxLoss),
	}
}

func extremeLine(label string, p simulation.ExtremePoint) string {
	line := fmt.Sprintf("%s: %s（%s）", label, SignedYen(p.Amt), Percent(p.Pct))
	if p.Date != "" {
		line += fmt.Sprintf(" 〔%s〕", p.Date)
	}
	return line
}

// Summary is the presentation view of a simulation result.
type Summary struct {
	Headline   string `json:"headline"`
	CurrentAUM string `json:"current_aum"`
	MaxGain    string `json:"max_gain"`
	MaxLoss    string `json:"max_loss"`
	LastLabel  string `json:"last_label"`
	NoData     string `json:"no_data,omitempty"`
}

// Summarize builds the text shown above and below the chart.
func Summarize(res simulation.Result) Summary {
	lines := ExtremeLines(res.Active)
	return Summary{
		Headline:   Headline(res),
		CurrentAUM: Yen(res.CurrentAUM),
		MaxGain:    lines[0],
		MaxLoss:    lines[1],
		LastLabel:  DateLabel(res.LastDate, res.LastDate),
		NoData:     NoDataLine(res.Unobserved),
	}
}

// NoDataLine names the tickers that have no price at all, without the
// exchange suffix. Empty when every ticker has data.
func NoDataLine(tickers []string) string {
	if len(tickers) == 0 {
		return ""
	}
	labels := make([]string, len(tickers))
	for i, t := range tickers {
		labels[i] = domain.DisplayTicker(t)
	}
	return "データなし: " + strings.Join(labels, ", ")
}
