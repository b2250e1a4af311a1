package analyzer

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

// ErrRange marks a date range that does not fit the series.
var ErrRange = errors.New("date range out of bounds")

// Bound names the violated side of a range check.
type Bound string

const (
	BoundStart Bound = "start"
	BoundEnd   Bound = "end"
	BoundOrder Bound = "order"
)

// RangeError reports which bound of the requested range was violated.
type RangeError struct {
	Bound   Bound
	Start   time.Time
	End     time.Time
	MinDate time.Time
	MaxDate time.Time
}

func (e *RangeError) Error() string {
	switch e.Bound {
	case BoundOrder:
		return fmt.Sprintf("start date %s is after end date %s",
			e.Start.Format(model.DateLayout), e.End.Format(model.DateLayout))
	case BoundStart:
		return fmt.Sprintf("start date %s must be on or after %s",
			e.Start.Format(model.DateLayout), e.MinDate.Format(model.DateLayout))
	default:
		return fmt.Sprintf("end date %s must be on or before %s",
			e.End.Format(model.DateLayout), e.MaxDate.Format(model.DateLayout))
	}
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

// FindOptimalTrade scans the points of series dated within [start, end] once,
// keeping the lowest price seen so far and the best gain realisable against
// it. It returns false when fewer than two points fall in the range or no
// positive gain exists. Among equal gains the earliest sell date wins.
func FindOptimalTrade(series model.PriceSeries, start, end time.Time) (model.TradeWindow, bool, error) {
	start, end = model.Day(start), model.Day(end)
	if err := checkRange(series, start, end); err != nil {
		return model.TradeWindow{}, false, err
	}

	lo, hi := bounds(series, start, end)
	if hi-lo < 2 {
		return model.TradeWindow{}, false, nil
	}

	minPoint := series.At(lo)
	bestProfit := decimal.Zero
	var best model.TradeWindow
	found := false

	for i := lo + 1; i < hi; i++ {
		p := series.At(i)
		// Compare before moving the minimum so a point never sells against itself.
		if profit := p.Price.Sub(minPoint.Price); profit.GreaterThan(bestProfit) {
			bestProfit = profit
			best = model.NewTradeWindow(minPoint, p)
			found = true
		}
		if p.Price.LessThan(minPoint.Price) {
			minPoint = p
		}
	}
	return best, found, nil
}

// bounds returns the half-open index interval of points dated in [start, end].
func bounds(series model.PriceSeries, start, end time.Time) (lo, hi int) {
	n := series.Len()
	lo = sort.Search(n, func(i int) bool { return !series.At(i).Date.Before(start) })
	hi = sort.Search(n, func(i int) bool { return series.At(i).Date.After(end) })
	return lo, hi
}

func checkRange(series model.PriceSeries, start, end time.Time) error {
	if start.After(end) {
		return &RangeError{Bound: BoundOrder, Start: start, End: end}
	}
	minDate, ok := series.MinDate()
	if !ok {
		// No extent to check against; the scan finds nothing.
		return nil
	}
	maxDate, _ := series.MaxDate()
	if start.Before(minDate) {
		return &RangeError{Bound: BoundStart, Start: start, End: end, MinDate: minDate, MaxDate: maxDate}
	}
	if end.After(maxDate) {
		return &RangeError{Bound: BoundEnd, Start: start, End: end, MinDate: minDate, MaxDate: maxDate}
	}
	return nil
}
