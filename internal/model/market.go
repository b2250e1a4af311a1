package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on every outer surface.
const DateLayout = "2006-01-02"

// Observation is a raw daily row as returned by a provider. Price is null when
// the provider had no close for the day.
type Observation struct {
	Date  time.Time
	Price decimal.NullDecimal
}

// PricePoint is one validated daily price. Price is always positive.
type PricePoint struct {
	Date  time.Time
	Price decimal.Decimal
}

// PriceSeries holds the validated daily prices of one instrument, ascending
// by date with unique dates. Build it with NewPriceSeries.
type PriceSeries struct {
	Symbol string
	points []PricePoint
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.points) }

// At returns the i-th point in date order.
func (s PriceSeries) At(i int) PricePoint { return s.points[i] }

// Points returns a copy of the points.
func (s PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Clone returns a series that shares no memory with s.
func (s PriceSeries) Clone() PriceSeries {
	return PriceSeries{Symbol: s.Symbol, points: s.Points()}
}

// MinDate returns the first date of the series, false when empty.
func (s PriceSeries) MinDate() (time.Time, bool) {
	if len(s.points) == 0 {
		return time.Time{}, false
	}
	return s.points[0].Date, true
}

// MaxDate returns the last date of the series, false when empty.
func (s PriceSeries) MaxDate() (time.Time, bool) {
	if len(s.points) == 0 {
		return time.Time{}, false
	}
	return s.points[len(s.points)-1].Date, true
}

// Equal reports whether both series carry the same symbol and points.
func (s PriceSeries) Equal(o PriceSeries) bool {
	if s.Symbol != o.Symbol || len(s.points) != len(o.points) {
		return false
	}
	for i := range s.points {
		if !s.points[i].Date.Equal(o.points[i].Date) || !s.points[i].Price.Equal(o.points[i].Price) {
			return false
		}
	}
	return true
}

// CacheEntry is a refreshed series snapshot. It is replaced whole, never edited.
type CacheEntry struct {
	Symbol      string
	Series      PriceSeries
	RefreshedAt time.Time
}

// Age returns how old the entry is at now.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.RefreshedAt)
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
