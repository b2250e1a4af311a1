package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

var (
	seriesHeader   = []string{"Date", "Price"}
	analysisHeader = []string{
		"Ticker", "Analysis_Start", "Analysis_End",
		"Buy_Date", "Buy_Price", "Sell_Date", "Sell_Price",
		"Profit_Per_Share", "Return_Percent", "Holding_Days",
	}
)

// WriteSeriesCSV writes a Date,Price file, one row per point.
func WriteSeriesCSV(w io.Writer, s model.PriceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return err
	}
	for _, p := range s.Points() {
		if err := cw.Write([]string{day(p.Date), p.Price.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAnalysisCSV writes the header and a single result row.
func WriteAnalysisCSV(w io.Writer, a model.Analysis) error {
	t := a.Trade
	cw := csv.NewWriter(w)
	rows := [][]string{analysisHeader, {
		a.Symbol, day(a.Start), day(a.End),
		day(t.BuyDate), t.BuyPrice.String(), day(t.SellDate), t.SellPrice.String(),
		t.Profit().String(), t.ProfitPercent().StringFixed(4), strconv.Itoa(t.HoldingDays()),
	}}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write analysis csv: %w", err)
	}
	return nil
}

// SaveSeries writes {dir}/{SYMBOL}_stock_data.csv and returns the path.
func SaveSeries(dir string, s model.PriceSeries) (string, error) {
	path := filepath.Join(dir, s.Symbol+"_stock_data.csv")
	return path, writeFile(path, func(w io.Writer) error { return WriteSeriesCSV(w, s) })
}

// SaveAnalysis writes {dir}/{SYMBOL}_analysis_results.csv and returns the path.
func SaveAnalysis(dir string, a model.Analysis) (string, error) {
	path := filepath.Join(dir, a.Symbol+"_analysis_results.csv")
	return path, writeFile(path, func(w io.Writer) error { return WriteAnalysisCSV(w, a) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
