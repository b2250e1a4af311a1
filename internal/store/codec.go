package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

type entryJSON struct {
	Symbol      string      `json:"symbol"`
	RefreshedAt time.Time   `json:"refreshed_at"`
	Points      []pointJSON `json:"points"`
}

type pointJSON struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// EncodeEntry serializes a cache entry. Prices keep their exact decimal text.
func EncodeEntry(e *model.CacheEntry) ([]byte, error) {
	pts := e.Series.Points()
	out := entryJSON{
		Symbol:      e.Symbol,
		RefreshedAt: e.RefreshedAt.UTC(),
		Points:      make([]pointJSON, len(pts)),
	}
	for i, p := range pts {
		out.Points[i] = pointJSON{Date: p.Date.Format(model.DateLayout), Price: p.Price}
	}
	return json.Marshal(out)
}

// DecodeEntry is the inverse of EncodeEntry and revalidates the series.
func DecodeEntry(data []byte) (*model.CacheEntry, error) {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	pts := make([]model.PricePoint, len(in.Points))
	for i, p := range in.Points {
		date, err := model.ParseDay(p.Date)
		if err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", in.Symbol, err)
		}
		pts[i] = model.PricePoint{Date: date, Price: p.Price}
	}
	series, err := model.NewPriceSeries(in.Symbol, pts)
	if err != nil {
		return nil, fmt.Errorf("decode entry %s: %w", in.Symbol, err)
	}
	return &model.CacheEntry{Symbol: in.Symbol, Series: series, RefreshedAt: in.RefreshedAt}, nil
}
