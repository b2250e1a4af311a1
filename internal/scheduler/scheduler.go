package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/xuknee/stock-profit-analyzer/internal/collector"
	"github.com/xuknee/stock-profit-analyzer/internal/notifier"
	"github.com/xuknee/stock-profit-analyzer/internal/report"
)

// Scheduler keeps a fixed symbol list warm in the cache on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  notifier.Notifier
	Symbols   []string
	Ctx       context.Context
	Log       *slog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n notifier.Notifier, symbols []string, logger *slog.Logger) *Scheduler {
	if n == nil {
		n = notifier.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Symbols:   symbols,
		Ctx:       ctx,
		Log:       logger,
	}
}

// Register adds the refresh task under a six-field cron expression.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.RefreshAndNotify); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", "symbols", s.Symbols)
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow refreshes every symbol immediately and returns the outcomes.
func (s *Scheduler) RunNow() []report.RefreshResult {
	results := make([]report.RefreshResult, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		if s.Ctx.Err() != nil {
			break
		}
		snap, err := s.Collector.Refresh(s.Ctx, sym)
		r := report.RefreshResult{Symbol: sym, Err: err}
		if err != nil {
			s.Log.Error("refresh failed", "symbol", sym, "err", err)
		} else {
			r.Symbol = snap.Series.Symbol
			r.Records = snap.Series.Len()
		}
		results = append(results, r)
	}
	return results
}

// RefreshAndNotify runs RunNow and sends the summary. The cron job runs it.
func (s *Scheduler) RefreshAndNotify() {
	s.Log.Info("running refresh task")
	results := s.RunNow()
	if err := s.Notifier.Send(s.Ctx, report.FormatRefreshSummary(time.Now(), results)); err != nil {
		s.Log.Error("send notification", "err", err)
	}
}
