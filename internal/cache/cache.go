// Package cache serves daily price series, refreshing them from a provider
// only when the cached copy is older than the caller allows.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
	"github.com/xuknee/stock-profit-analyzer/internal/store"
)

var (
	// ErrFetchFailed marks a provider failure. The concrete error is a *FetchError.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNoData means the provider answered but no usable price was left.
	ErrNoData = errors.New("no data")
)

// FetchError wraps the provider error for one symbol.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// FetchFunc retrieves the raw daily history of a symbol.
type FetchFunc func(ctx context.Context, symbol string) ([]model.Observation, error)

// Source tells where a snapshot came from.
type Source string

const (
	SourceMemory   Source = "memory"
	SourceStore    Source = "store"
	SourceProvider Source = "provider"
	SourceStale    Source = "stale"
)

// Snapshot is the result of Get. Series is a private copy.
type Snapshot struct {
	Series      model.PriceSeries
	RefreshedAt time.Time
	Source      Source
}

// Cache keeps the latest entry per symbol in memory and mirrors it to a
// store so it outlives the process.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*model.CacheEntry
	store   store.Store
	now     func() time.Time
	log     *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New creates a cache backed by st. A nil st keeps entries in memory only.
func New(st store.Store, opts ...Option) *Cache {
	if st == nil {
		st = store.NewNoopStore()
	}
	c := &Cache{
		entries: make(map[string]*model.CacheEntry),
		store:   st,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type getOptions struct {
	acceptStale bool
}

// GetOption adjusts a single Get call.
type GetOption func(*getOptions)

// AcceptStale serves a cached entry past its freshness window when the
// refresh fails, instead of returning the fetch error.
func AcceptStale() GetOption {
	return func(o *getOptions) { o.acceptStale = true }
}

// Get returns the series for symbol. A cached entry younger than freshFor is
// served as is; otherwise fetch is called and a successful result replaces
// the entry. A failed fetch never touches the existing entry.
func (c *Cache) Get(ctx context.Context, symbol string, freshFor time.Duration, fetch FetchFunc, opts ...GetOption) (Snapshot, error) {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return Snapshot{}, err
	}

	entry, src := c.lookup(ctx, symbol)
	if entry != nil && entry.Age(c.now()) < freshFor {
		c.log.Debug("serving cached series", "symbol", symbol, "source", src,
			"refreshed_at", entry.RefreshedAt.Format(time.DateTime))
		return snapshotOf(entry, src), nil
	}

	c.log.Info("fetching series", "symbol", symbol)
	obs, err := fetch(ctx, symbol)
	if err != nil {
		ferr := &FetchError{Symbol: symbol, Err: err}
		if o.acceptStale && entry != nil {
			c.log.Warn("refresh failed, serving stale series", "symbol", symbol,
				"age", entry.Age(c.now()).Round(time.Minute), "err", err)
			return snapshotOf(entry, SourceStale), nil
		}
		return Snapshot{}, ferr
	}

	series := model.Normalize(symbol, obs)
	if series.Len() == 0 {
		return Snapshot{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	fresh := &model.CacheEntry{Symbol: symbol, Series: series, RefreshedAt: c.now()}
	c.mu.Lock()
	c.entries[symbol] = fresh
	c.mu.Unlock()
	c.persist(ctx, fresh)

	minDate, _ := series.MinDate()
	maxDate, _ := series.MaxDate()
	c.log.Info("series refreshed", "symbol", symbol, "records", series.Len(),
		"from", minDate.Format(model.DateLayout), "to", maxDate.Format(model.DateLayout))
	return snapshotOf(fresh, SourceProvider), nil
}

// Invalidate drops the in-memory entry so the next Get reads the store.
func (c *Cache) Invalidate(symbol string) {
	symbol, err := model.NormalizeSymbol(symbol)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, symbol)
	c.mu.Unlock()
}

// Close closes the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) lookup(ctx context.Context, symbol string) (*model.CacheEntry, Source) {
	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()
	if ok {
		return entry, SourceMemory
	}

	data, err := c.store.Get(ctx, symbol)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Warn("cache read failed", "symbol", symbol, "store", c.store.Name(), "err", err)
		}
		return nil, ""
	}
	entry, err = store.DecodeEntry(data)
	if err != nil {
		c.log.Warn("discarding unreadable cache entry", "symbol", symbol, "err", err)
		return nil, ""
	}
	if entry.Symbol != symbol {
		c.log.Warn("discarding cache entry stored for another symbol", "symbol", symbol, "stored", entry.Symbol)
		return nil, ""
	}

	c.mu.Lock()
	// A concurrent refresh may have landed first; keep the newer one.
	if cur, ok := c.entries[symbol]; ok && cur.RefreshedAt.After(entry.RefreshedAt) {
		entry = cur
	} else {
		c.entries[symbol] = entry
	}
	c.mu.Unlock()
	return entry, SourceStore
}

func (c *Cache) persist(ctx context.Context, entry *model.CacheEntry) {
	data, err := store.EncodeEntry(entry)
	if err != nil {
		c.log.Warn("cache encode failed", "symbol", entry.Symbol, "err", err)
		return
	}
	if err := c.store.Put(ctx, entry.Symbol, data); err != nil {
		c.log.Warn("cache save failed", "symbol", entry.Symbol, "store", c.store.Name(), "err", err)
		return
	}
	c.log.Debug("cache saved", "symbol", entry.Symbol, "store", c.store.Name())
}

func snapshotOf(e *model.CacheEntry, src Source) Snapshot {
	return Snapshot{Series: e.Series.Clone(), RefreshedAt: e.RefreshedAt, Source: src}
}
