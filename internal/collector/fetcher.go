package collector

import (
	"context"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

// Fetcher retrieves the full daily close history of a symbol.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string) ([]model.Observation, error)
	Name() string
}
