package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuknee/stock-profit-analyzer/internal/analyzer"
	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

func analysis() model.Analysis {
	return model.Analysis{
		Symbol: "AAPL",
		Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Trade: model.TradeWindow{
			BuyDate:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			BuyPrice:  decimal.RequireFromString("160"),
			SellDate:  time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC),
			SellPrice: decimal.RequireFromString("200"),
		},
	}
}

func TestFormatTrade(t *testing.T) {
	out := FormatTrade(analysis())
	assert.Contains(t, out, "Stock:           AAPL")
	assert.Contains(t, out, "BUY:             2024-01-05 at $160.00")
	assert.Contains(t, out, "SELL:            2024-02-04 at $200.00")
	assert.Contains(t, out, "Profit/share:    $40.00")
	assert.Contains(t, out, "Return:          25.00%")
	assert.Contains(t, out, "Holding period:  30 days")
}

func TestFormatNoOpportunity(t *testing.T) {
	a := analysis()
	out := FormatNoOpportunity(a.Symbol, a.Start, a.End)
	assert.Contains(t, out, "AAPL between 2024-01-01 and 2024-03-31")
}

func TestFormatSeriesSummary(t *testing.T) {
	s, err := model.NewPriceSeries("MSFT", []model.PricePoint{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: decimal.NewFromInt(1)},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Price: decimal.NewFromInt(2)},
	})
	require.NoError(t, err)
	out := FormatSeriesSummary(s, time.Now(), "provider")
	assert.Contains(t, out, "MSFT: 2 records from 2024-01-02 to 2024-01-03 (provider")

	assert.Equal(t, "EMPTY: no data\n", FormatSeriesSummary(model.PriceSeries{Symbol: "EMPTY"}, time.Now(), "store"))
}

func TestFormatRefreshSummary(t *testing.T) {
	out := FormatRefreshSummary(time.Date(2024, 1, 2, 22, 0, 0, 0, time.UTC), []RefreshResult{
		{Symbol: "AAPL", Records: 10},
		{Symbol: "BAD", Err: errors.New("boom")},
	})
	assert.Contains(t, out, "AAPL: 10 records")
	assert.Contains(t, out, "BAD: failed (boom)")
	assert.True(t, strings.HasSuffix(out, "1/2 refreshed"))
}

func TestWriteAnalysisCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysisCSV(&buf, analysis()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, analysisHeader, rows[0])
	assert.Equal(t, []string{
		"AAPL", "2024-01-01", "2024-03-31",
		"2024-01-05", "160", "2024-02-04", "200",
		"40", "25.0000", "30",
	}, rows[1])
}

func TestSaveSeries(t *testing.T) {
	s, err := model.NewPriceSeries("TSLA", []model.PricePoint{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("248.42")},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("238.45")},
	})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := SaveSeries(dir, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "TSLA_stock_data.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Price\n2024-01-02,248.42\n2024-01-03,238.45\n", string(data))
}

func TestSaveAnalysis(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveAnalysis(dir, analysis())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAPL_analysis_results.csv"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFormatPeriodStats(t *testing.T) {
	pt := func(day int, price string) model.PricePoint {
		return model.PricePoint{Date: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString(price)}
	}
	out := FormatPeriodStats(analyzer.PeriodStats{
		Points:   3,
		Low:      pt(2, "10"),
		High:     pt(3, "20"),
		Last:     pt(3, "20"),
		Position: decimal.NewFromInt(1),
	})
	assert.Equal(t, "Period: 3 days, low $10.00 on 2024-01-02, high $20.00 on 2024-01-03, last $20.00 (100% of range)\n", out)
}
