package model

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TradeWindow is the best single buy-then-sell pair found in a range.
// Profit is always positive; a range without one yields no TradeWindow.
type TradeWindow struct {
	BuyDate   time.Time
	BuyPrice  decimal.Decimal
	SellDate  time.Time
	SellPrice decimal.Decimal
}

// NewTradeWindow builds a window from its buy and sell points.
func NewTradeWindow(buy, sell PricePoint) TradeWindow {
	return TradeWindow{
		BuyDate:   buy.Date,
		BuyPrice:  buy.Price,
		SellDate:  sell.Date,
		SellPrice: sell.Price,
	}
}

// Profit is the per-share gain.
func (w TradeWindow) Profit() decimal.Decimal {
	return w.SellPrice.Sub(w.BuyPrice)
}

// ProfitPercent is the gain relative to the buy price, in percent.
func (w TradeWindow) ProfitPercent() decimal.Decimal {
	return w.Profit().Div(w.BuyPrice).Mul(hundred)
}

// HoldingDays is the number of calendar days between buy and sell.
func (w TradeWindow) HoldingDays() int {
	return int(w.SellDate.Sub(w.BuyDate).Hours() / 24)
}

// Analysis ties a trade to the symbol and range it was computed for.
type Analysis struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Trade  TradeWindow
}
