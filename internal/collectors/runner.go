package collectors

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/models"
)

// Source pairs a collector with its venue and fetch options.
type Source struct {
	Venue     models.Venue
	Collector Collector
	Options   FetchOptions
}

// FetchAll fetches every source concurrently. A failing source yields an empty
// catalog and a logged error; the other catalogs are still returned. The
// returned error slice is indexed like sources (nil on success).
func FetchAll(ctx context.Context, sources []Source) ([]models.Catalog, []error) {
	catalogs := make([]models.Catalog, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			markets, err := src.Collector.Fetch(ctx, src.Options)
			if err != nil {
				logging.Errorf("[%s] fetch failed: %v", src.Collector.Name(), err)
				errs[i] = err
				markets = nil
			}
			catalogs[i] = models.NewCatalog(src.Venue, markets, time.Now())
			return nil
		})
	}
	_ = g.Wait()
	return catalogs, errs
}

// PollLoop runs FetchAll on every tick (and once immediately) until ctx is
// done, handing the catalogs to handleFn.
func PollLoop(ctx context.Context, interval time.Duration, sources []Source, handleFn func(context.Context, []models.Catalog) error) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		catalogs, _ := FetchAll(ctx, sources)
		if ctx.Err() != nil {
			return
		}
		if handleFn != nil {
			if err := handleFn(ctx, catalogs); err != nil {
				logging.Errorf("[collectors] handler error: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
