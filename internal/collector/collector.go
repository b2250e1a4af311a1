package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xuknee/stock-profit-analyzer/internal/analyzer"
	"github.com/xuknee/stock-profit-analyzer/internal/cache"
	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// With no Observations it generates a deterministic daily walk.
type MockFetcher struct {
	Price        float64
	Days         int
	Observations []model.Observation
	Err          error
	Calls        int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, _ string) ([]model.Observation, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Observations != nil {
		return m.Observations, nil
	}
	return generateMockHistory(m.Price, m.Days, time.Now()), nil
}

// generateMockHistory walks the price in a fixed zig-zag ending the day before end.
func generateMockHistory(basePrice float64, count int, end time.Time) []model.Observation {
	if basePrice <= 0 {
		basePrice = 100
	}
	if count <= 0 {
		count = 250
	}
	last := model.Day(end).AddDate(0, 0, -1)
	obs := make([]model.Observation, count)
	for i := 0; i < count; i++ {
		swing := float64((i*7)%11-5) * 0.004
		trend := float64(i-count/2) * 0.001
		p := decimal.NewFromFloat(basePrice * (1 + trend + swing)).Round(2)
		obs[i] = model.Observation{
			Date:  last.AddDate(0, 0, i-count+1),
			Price: decimal.NewNullDecimal(p),
		}
	}
	return obs
}

// Collector serves series through the cache and runs the profit scan on them.
type Collector struct {
	Fetcher     Fetcher
	Cache       *cache.Cache
	FreshFor    time.Duration
	AcceptStale bool
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, c *cache.Cache, freshFor time.Duration, acceptStale bool) *Collector {
	return &Collector{Fetcher: fetcher, Cache: c, FreshFor: freshFor, AcceptStale: acceptStale}
}

// Collect returns the cached or freshly fetched series for symbol.
func (c *Collector) Collect(ctx context.Context, symbol string) (cache.Snapshot, error) {
	var opts []cache.GetOption
	if c.AcceptStale {
		opts = append(opts, cache.AcceptStale())
	}
	return c.Cache.Get(ctx, symbol, c.FreshFor, c.Fetcher.FetchHistory, opts...)
}

// Refresh fetches symbol regardless of cache age.
func (c *Collector) Refresh(ctx context.Context, symbol string) (cache.Snapshot, error) {
	return c.Cache.Get(ctx, symbol, 0, c.Fetcher.FetchHistory)
}

// Analyze collects symbol and finds the best trade within [start, end].
// The bool is false when the range holds no profitable trade.
func (c *Collector) Analyze(ctx context.Context, symbol string, start, end time.Time) (model.Analysis, bool, error) {
	snap, err := c.Collect(ctx, symbol)
	if err != nil {
		return model.Analysis{}, false, err
	}
	trade, ok, err := analyzer.FindOptimalTrade(snap.Series, start, end)
	if err != nil {
		return model.Analysis{}, false, fmt.Errorf("analyze %s: %w", snap.Series.Symbol, err)
	}
	a := model.Analysis{
		Symbol: snap.Series.Symbol,
		Start:  model.Day(start),
		End:    model.Day(end),
		Trade:  trade,
	}
	return a, ok, nil
}
