package collectors

import (
	"context"

	"github.com/hetulpatel/arbscanner/internal/models"
)

// FetchOptions control how many pages/items a collector should fetch per run.
type FetchOptions struct {
	Pages    int
	PageSize int
}

// Collector is implemented by venue-specific clients (Polymarket, Kalshi).
// Each collector fetches its catalog and projects it into models.Market.
type Collector interface {
	Name() string
	Fetch(ctx context.Context, opts FetchOptions) ([]models.Market, error)
}
