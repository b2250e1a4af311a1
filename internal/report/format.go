// Package report renders analysis results as text and CSV.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuknee/stock-profit-analyzer/internal/analyzer"
	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

// FormatTrade formats the optimal trade of an analysis.
func FormatTrade(a model.Analysis) string {
	var b strings.Builder
	w := a.Trade
	b.WriteString("OPTIMAL TRADING STRATEGY FOUND\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	b.WriteString(fmt.Sprintf("Stock:           %s\n", a.Symbol))
	b.WriteString(fmt.Sprintf("Analysis period: %s to %s\n", day(a.Start), day(a.End)))
	b.WriteString(fmt.Sprintf("BUY:             %s at $%s\n", day(w.BuyDate), w.BuyPrice.StringFixed(2)))
	b.WriteString(fmt.Sprintf("SELL:            %s at $%s\n", day(w.SellDate), w.SellPrice.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Profit/share:    $%s\n", w.Profit().StringFixed(2)))
	b.WriteString(fmt.Sprintf("Return:          %s%%\n", w.ProfitPercent().StringFixed(2)))
	b.WriteString(fmt.Sprintf("Holding period:  %d days\n", w.HoldingDays()))
	b.WriteString(strings.Repeat("=", 50) + "\n")
	return b.String()
}

// FormatNoOpportunity explains an empty result.
func FormatNoOpportunity(symbol string, start, end time.Time) string {
	return fmt.Sprintf("No profitable trading opportunity found for %s between %s and %s.\n"+
		"Try a different date range or check whether the stock was declining.\n",
		symbol, day(start), day(end))
}

// FormatSeriesSummary describes the extent of a series.
func FormatSeriesSummary(s model.PriceSeries, refreshedAt time.Time, source string) string {
	minDate, ok := s.MinDate()
	if !ok {
		return fmt.Sprintf("%s: no data\n", s.Symbol)
	}
	maxDate, _ := s.MaxDate()
	return fmt.Sprintf("%s: %d records from %s to %s (%s, updated %s)\n",
		s.Symbol, s.Len(), day(minDate), day(maxDate), source, refreshedAt.Local().Format("2006-01-02 15:04"))
}

// FormatPeriodStats formats the price extremes of the analysed range.
func FormatPeriodStats(st analyzer.PeriodStats) string {
	return fmt.Sprintf("Period: %d days, low $%s on %s, high $%s on %s, last $%s (%s%% of range)\n",
		st.Points,
		st.Low.Price.StringFixed(2), day(st.Low.Date),
		st.High.Price.StringFixed(2), day(st.High.Date),
		st.Last.Price.StringFixed(2), st.Position.Shift(2).StringFixed(0))
}

// RefreshResult is the outcome of refreshing one symbol.
type RefreshResult struct {
	Symbol  string
	Records int
	Err     error
}

// FormatRefreshSummary formats a scheduled refresh run as an HTML message.
func FormatRefreshSummary(at time.Time, results []RefreshResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>Price cache refresh</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	ok := 0
	for _, r := range results {
		if r.Err != nil {
			b.WriteString(fmt.Sprintf("  %s: failed (%v)\n", r.Symbol, r.Err))
			continue
		}
		ok++
		b.WriteString(fmt.Sprintf("  %s: %d records\n", r.Symbol, r.Records))
	}
	b.WriteString(fmt.Sprintf("\n%d/%d refreshed", ok, len(results)))
	return b.String()
}

func day(t time.Time) string { return t.Format(model.DateLayout) }
