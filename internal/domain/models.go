// Package domain provides core domain models and types.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DateLayout is the calendar date format used by every price row.
// Lexicographic order of such strings equals chronological order.
const DateLayout = "2006-01-02"

// PriceRecord is one observation of a ticker's closing price on a date.
// A missing close is stored as NaN.
type PriceRecord struct {
	Date   string  `json:"date"`
	Ticker string  `json:"ticker"`
	Close  float64 `json:"close"`
}

// Missing returns a close value meaning "no price for this date".
func Missing() float64 {
	return math.NaN()
}

// ValidClose reports whether v is usable as a price.
func ValidClose(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// HasClose reports whether the record carries a usable close.
func (p PriceRecord) HasClose() bool {
	return ValidClose(p.Close)
}

type priceRecordJSON struct {
	Date   string          `json:"date"`
	Ticker string          `json:"ticker"`
	Close  json.RawMessage `json:"close"`
}

// UnmarshalJSON accepts close as a number, a numeric string or null.
// Anything that does not parse to a valid price becomes missing.
func (p *PriceRecord) UnmarshalJSON(data []byte) error {
	var raw priceRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode price record: %w", err)
	}

	p.Date = raw.Date
	p.Ticker = raw.Ticker
	p.Close = parseClose(raw.Close)
	return nil
}

// MarshalJSON emits null for a missing close.
func (p PriceRecord) MarshalJSON() ([]byte, error) {
	out := priceRecordJSON{Date: p.Date, Ticker: p.Ticker, Close: json.RawMessage("null")}
	if p.HasClose() {
		out.Close = json.RawMessage(strconv.FormatFloat(p.Close, 'f', -1, 64))
	}
	return json.Marshal(out)
}

func parseClose(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Missing()
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return Missing()
		}
	} else {
		s = string(raw)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !ValidClose(v) {
		return Missing()
	}
	return v
}

// TickerInfo is a searchable catalogue entry.
type TickerInfo struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// DisplayTicker strips the Tokyo exchange suffix for display.
func DisplayTicker(ticker string) string {
	return strings.TrimSuffix(ticker, ".T")
}
