package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxSymbolLen is the longest accepted instrument identifier.
const MaxSymbolLen = 10

// ErrInvalidIdentifier marks a malformed instrument identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// NormalizeSymbol trims and upper-cases a ticker and checks its length in
// characters. Invalid UTF-8 is rejected.
func NormalizeSymbol(symbol string) (string, error) {
	if !utf8.ValidString(symbol) {
		return "", fmt.Errorf("%w: ticker %q is not valid UTF-8", ErrInvalidIdentifier, symbol)
	}
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("%w: ticker cannot be empty", ErrInvalidIdentifier)
	}
	if utf8.RuneCountInString(s) > MaxSymbolLen {
		return "", fmt.Errorf("%w: ticker %q longer than %d characters", ErrInvalidIdentifier, s, MaxSymbolLen)
	}
	return s, nil
}

// NewPriceSeries validates points and returns them as a series sorted by
// date. It rejects non-positive prices and repeated dates instead of fixing
// them; use Normalize for raw provider data.
func NewPriceSeries(symbol string, points []PricePoint) (PriceSeries, error) {
	out := make([]PricePoint, len(points))
	for i, p := range points {
		if !p.Price.IsPositive() {
			return PriceSeries{}, fmt.Errorf("price on %s must be positive, got %s", p.Date.Format(DateLayout), p.Price)
		}
		out[i] = PricePoint{Date: Day(p.Date), Price: p.Price}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	for i := 1; i < len(out); i++ {
		if out[i].Date.Equal(out[i-1].Date) {
			return PriceSeries{}, fmt.Errorf("duplicate date %s", out[i].Date.Format(DateLayout))
		}
	}
	return PriceSeries{Symbol: symbol, points: out}, nil
}

// Normalize turns raw observations into a series: rows with a missing or
// non-positive price are dropped, the last row seen for a date wins, and the
// result is sorted ascending. The result may be empty.
func Normalize(symbol string, obs []Observation) PriceSeries {
	byDay := make(map[time.Time]int, len(obs))
	points := make([]PricePoint, 0, len(obs))
	for _, o := range obs {
		if !o.Price.Valid || !o.Price.Decimal.IsPositive() {
			continue
		}
		d := Day(o.Date)
		if i, ok := byDay[d]; ok {
			points[i].Price = o.Price.Decimal
			continue
		}
		byDay[d] = len(points)
		points = append(points, PricePoint{Date: d, Price: o.Price.Decimal})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return PriceSeries{Symbol: symbol, points: points}
}
