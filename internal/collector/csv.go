package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

// dateLayouts are the date formats accepted in imported files: ISO dates and
// the "Jan 2, 2006" form of Yahoo's history table.
var dateLayouts = []string{model.DateLayout, "Jan 2, 2006", "01/02/2006"}

// CSVFetcher reads Date,Price files from a directory, one file per symbol
// named {SYMBOL}.csv or {SYMBOL}_stock_data.csv.
type CSVFetcher struct {
	Dir string
}

func NewCSVFetcher(dir string) *CSVFetcher { return &CSVFetcher{Dir: dir} }

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchHistory(_ context.Context, symbol string) ([]model.Observation, error) {
	var file *os.File
	var err error
	for _, name := range []string{symbol + ".csv", symbol + "_stock_data.csv"} {
		file, err = os.Open(filepath.Join(f.Dir, name))
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if file == nil {
		return nil, fmt.Errorf("no csv file for %s in %s", symbol, f.Dir)
	}
	defer file.Close()
	return ParseSeriesCSV(file)
}

// ParseSeriesCSV reads a Date,Price table. Column order is taken from the
// header. Rows whose price does not parse come back with a null price;
// rows whose date does not parse are an error.
func ParseSeriesCSV(r io.Reader) ([]model.Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	dateCol, priceCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			dateCol = i
		case "price", "close":
			priceCol = i
		}
	}
	if dateCol < 0 || priceCol < 0 {
		return nil, fmt.Errorf("csv header %v lacks Date and Price columns", header)
	}

	var out []model.Observation
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(rec) <= dateCol || len(rec) <= priceCol {
			continue
		}
		date, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		o := model.Observation{Date: date}
		if p, err := parsePrice(rec[priceCol]); err == nil {
			o.Price = decimal.NewNullDecimal(p)
		}
		out = append(out, o)
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	// pandas writes full timestamps, e.g. "2024-01-02 00:00:00-05:00".
	if len(s) > len(model.DateLayout) {
		if t, err := time.ParseInLocation(model.DateLayout, s[:len(model.DateLayout)], time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parsePrice accepts a currency sign and thousands separators. Signs are
// kept, so "-1" stays negative and is dropped by normalization.
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return decimal.Decimal{}, errors.New("empty price")
	}
	return decimal.NewFromString(s)
}
