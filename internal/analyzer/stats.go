package analyzer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

// PeriodStats summarises the prices of a date range.
type PeriodStats struct {
	Points int
	Low    model.PricePoint
	High   model.PricePoint
	Last   model.PricePoint
	// Position is where Last sits between Low and High, from 0 to 1.
	Position decimal.Decimal
}

var half = decimal.RequireFromString("0.5")

// SummarizeRange returns the low, high and last price of the points dated in
// [start, end]. Ties keep the earliest date. It returns false when the range
// holds no points.
func SummarizeRange(series model.PriceSeries, start, end time.Time) (PeriodStats, bool, error) {
	start, end = model.Day(start), model.Day(end)
	if err := checkRange(series, start, end); err != nil {
		return PeriodStats{}, false, err
	}
	lo, hi := bounds(series, start, end)
	if hi <= lo {
		return PeriodStats{}, false, nil
	}

	st := PeriodStats{Points: hi - lo, Low: series.At(lo), High: series.At(lo)}
	for i := lo + 1; i < hi; i++ {
		p := series.At(i)
		if p.Price.GreaterThan(st.High.Price) {
			st.High = p
		}
		if p.Price.LessThan(st.Low.Price) {
			st.Low = p
		}
	}
	st.Last = series.At(hi - 1)
	st.Position = position(st.Last.Price, st.High.Price, st.Low.Price)
	return st, true, nil
}

func position(current, high, low decimal.Decimal) decimal.Decimal {
	if high.Equal(low) {
		return half
	}
	return current.Sub(low).Div(high.Sub(low))
}
