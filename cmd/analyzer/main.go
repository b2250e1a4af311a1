package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xuknee/stock-profit-analyzer/internal/analyzer"
	"github.com/xuknee/stock-profit-analyzer/internal/cache"
	"github.com/xuknee/stock-profit-analyzer/internal/config"
	"github.com/xuknee/stock-profit-analyzer/internal/logging"
	"github.com/xuknee/stock-profit-analyzer/internal/model"
	"github.com/xuknee/stock-profit-analyzer/internal/report"
	"github.com/xuknee/stock-profit-analyzer/internal/scheduler"
)

type rootOptions struct {
	configPath string
	logLevel   string
	stale      bool
	freshFor   time.Duration
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{configPath: "configs/config.yaml"}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		opts.configPath = v
	}

	root := &cobra.Command{
		Use:           "analyzer",
		Short:         "Find the most profitable single buy/sell window in a stock's price history",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.stale, "stale", false, "serve stale cached data when the provider fails")
	root.PersistentFlags().DurationVar(&opts.freshFor, "fresh-for", 0, "override the cache freshness window, e.g. 6h")

	root.AddCommand(newAnalyzeCmd(opts), newFetchCmd(opts), newWatchCmd(opts))
	return root
}

// setup loads config, applies flag overrides and wires the app.
func setup(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.stale {
		cfg.Cache.AcceptStale = true
	}
	if cmd.Flags().Changed("fresh-for") {
		cfg.Cache.Freshness = opts.freshFor
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	logger := logging.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	return newApp(ctx, cfg, logger)
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var startFlag, endFlag, outDir string
	var noSave bool

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Compute the optimal buy and sell dates within a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.collector.Collect(ctx, args[0])
			if err != nil {
				return explain(err)
			}
			series := snap.Series
			out := cmd.OutOrStdout()
			fmt.Fprint(out, report.FormatSeriesSummary(series, snap.RefreshedAt, string(snap.Source)))

			start, end, err := resolveRange(series, startFlag, endFlag)
			if err != nil {
				return err
			}

			if st, ok, err := analyzer.SummarizeRange(series, start, end); err != nil {
				return err
			} else if ok {
				fmt.Fprint(out, report.FormatPeriodStats(st))
			}

			trade, ok, err := analyzer.FindOptimalTrade(series, start, end)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprint(out, report.FormatNoOpportunity(series.Symbol, start, end))
				return nil
			}

			result := model.Analysis{Symbol: series.Symbol, Start: start, End: end, Trade: trade}
			fmt.Fprint(out, report.FormatTrade(result))

			if noSave {
				return nil
			}
			if outDir == "" {
				outDir = a.cfg.DataDir
			}
			if path, err := report.SaveSeries(outDir, series); err != nil {
				a.log.Warn("could not save raw data", "err", err)
			} else {
				fmt.Fprintf(out, "Raw data saved to %s\n", path)
			}
			if path, err := report.SaveAnalysis(outDir, result); err != nil {
				a.log.Warn("could not save results", "err", err)
			} else {
				fmt.Fprintf(out, "Results saved to %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&startFlag, "start", "", "first day of the range (YYYY-MM-DD), defaults to the first available day")
	cmd.Flags().StringVar(&endFlag, "end", "", "last day of the range (YYYY-MM-DD), defaults to the last available day")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for CSV output, defaults to data_dir")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write CSV files")
	return cmd
}

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch SYMBOL...",
		Short: "Load price history into the cache and report its extent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var failed int
			for _, sym := range args {
				get := a.collector.Collect
				if force {
					get = a.collector.Refresh
				}
				snap, err := get(ctx, sym)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", sym, explain(err))
					continue
				}
				fmt.Fprint(cmd.OutOrStdout(), report.FormatSeriesSummary(snap.Series, snap.RefreshedAt, string(snap.Source)))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d symbols failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "refetch even when the cache is fresh")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the configured symbols on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := setup(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if len(a.cfg.Schedule.Symbols) == 0 {
				return errors.New("schedule.symbols is empty, nothing to watch")
			}

			sched, err := startScheduler(ctx, a, runNow || os.Getenv("RUN_ON_START") == "true")
			if err != nil {
				return err
			}
			// Stop waits for a running job, so it must run before a.Close.
			defer sched.Stop()

			a.log.Info("watching, press Ctrl+C to stop", "cron", a.cfg.Schedule.RefreshCron)
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
				a.log.Info("shutdown signal received, stopping")
			case <-ctx.Done():
			}
			cancel()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "now", false, "refresh once immediately")
	return cmd
}

// startScheduler registers the refresh job and starts cron. With runNow the
// first refresh, summary included, completes before cron starts.
func startScheduler(ctx context.Context, a *app, runNow bool) (*scheduler.Scheduler, error) {
	sched := scheduler.NewScheduler(ctx, a.collector, a.notifier, a.cfg.Schedule.Symbols, a.log)
	if err := sched.Register(a.cfg.Schedule.RefreshCron); err != nil {
		return nil, err
	}
	if runNow {
		a.log.Info("running refresh on start")
		sched.RefreshAndNotify()
	}
	sched.Start()
	return sched, nil
}

// resolveRange parses the range flags, defaulting to the series extent.
func resolveRange(s model.PriceSeries, startFlag, endFlag string) (time.Time, time.Time, error) {
	start, _ := s.MinDate()
	end, _ := s.MaxDate()
	if startFlag != "" {
		t, err := model.ParseDay(startFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start %q, use YYYY-MM-DD (e.g. 2024-01-15)", startFlag)
		}
		start = t
	}
	if endFlag != "" {
		t, err := model.ParseDay(endFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end %q, use YYYY-MM-DD (e.g. 2024-01-15)", endFlag)
		}
		end = t
	}
	return start, end, nil
}

// explain adds a hint to the cache errors a user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidIdentifier):
		return fmt.Errorf("%w (tickers are 1 to %d characters)", err, model.MaxSymbolLen)
	case errors.Is(err, cache.ErrNoData):
		return fmt.Errorf("%w: the provider returned no valid prices", err)
	case errors.Is(err, cache.ErrFetchFailed):
		return fmt.Errorf("%w (use --stale to fall back to cached data)", err)
	default:
		return err
	}
}
