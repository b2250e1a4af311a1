package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuknee/stock-profit-analyzer/internal/cache"
	"github.com/xuknee/stock-profit-analyzer/internal/collector"
	"github.com/xuknee/stock-profit-analyzer/internal/config"
	"github.com/xuknee/stock-profit-analyzer/internal/notifier"
	"github.com/xuknee/stock-profit-analyzer/internal/store"
)

// app bundles the wired components for one command run.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	cache     *cache.Cache
	collector *collector.Collector
	notifier  notifier.Notifier
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.Provider.Name {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Provider.Range, cfg.Proxy), nil
	case "rest":
		return collector.NewRESTFetcher(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Proxy), nil
	case "html":
		return collector.NewHTMLFetcher(cfg.Proxy), nil
	case "csv":
		return collector.NewCSVFetcher(cfg.Provider.CSVDir), nil
	case "mock":
		return &collector.MockFetcher{Price: 100, Days: 500}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	st, err := store.Open(ctx, store.Options{
		Backend:       cfg.Cache.Backend,
		Dir:           cfg.DataDir,
		SQLitePath:    cfg.Cache.SQLitePath,
		RedisAddr:     cfg.Cache.Redis.Addr,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
	}, logger)
	if err != nil {
		// The cache still works from memory; only restarts lose it.
		logger.Warn("init cache store failed, using memory only", "backend", cfg.Cache.Backend, "err", err)
		st = store.NewNoopStore()
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	logger.Debug("components ready", "store", st.Name(), "provider", fetcher.Name())

	c := cache.New(st, cache.WithLogger(logger))
	a := &app{
		cfg:       cfg,
		log:       logger,
		cache:     c,
		collector: collector.NewCollector(fetcher, c, cfg.Cache.Freshness, cfg.Cache.AcceptStale),
		notifier:  notifier.Noop{},
	}
	if cfg.Telegram.BotToken != "" {
		a.notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
	}
	return a, nil
}

func (a *app) Close() error {
	return a.cache.Close()
}
