package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hetulpatel/arbscanner/internal/cache"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/queue"
	"github.com/hetulpatel/arbscanner/internal/report"
	"github.com/hetulpatel/arbscanner/internal/scanner"
	sqlstore "github.com/hetulpatel/arbscanner/internal/storage/sqlite"
)

// engine handles one poll: store the catalogs, scan, drop repeats, publish.
// With no writer the opportunities are recorded directly; otherwise
// arb_sink records them from the topic.
type engine struct {
	scanner  *scanner.Scanner
	store    *sqlstore.Store
	cache    cache.OpportunityCache
	writer   queue.MessageWriter
	minDelta float64
	out      io.Writer
	now      func() time.Time
}

func (e *engine) handle(ctx context.Context, catalogs []models.Catalog) error {
	now := e.now().UTC()

	for _, c := range catalogs {
		if len(c.Markets) == 0 {
			continue
		}
		if err := e.store.UpsertMarkets(ctx, c.Markets, c.CapturedAt); err != nil {
			logging.Errorf("[arb-engine] store %s catalog: %v", c.Venue, err)
		}
	}

	poly, kx := scanner.Split(catalogs)
	opps, err := e.scanner.Scan(ctx, poly, kx, now)
	if err != nil {
		return err
	}

	fresh, err := cache.Filter(ctx, e.cache, opps, e.minDelta)
	if err != nil {
		return fmt.Errorf("filter repeats: %w", err)
	}
	if len(fresh) == 0 {
		logging.Infof("[arb-engine] %d opportunities, none new", len(opps))
		return nil
	}

	profile := e.scanner.Profile().Name
	delivered := fresh
	if e.writer != nil {
		n, err := queue.PublishOpportunities(ctx, e.writer, profile, fresh, now)
		if err != nil {
			return err
		}
		logging.Infof("[arb-engine] published %d/%d opportunities", n, len(opps))
	} else {
		delivered = make([]matches.Opportunity, 0, len(fresh))
		for i := range fresh {
			if err := e.store.InsertOpportunity(ctx, profile, &fresh[i], now); err != nil {
				logging.Errorf("[arb-engine] record %s: %v", fresh[i].ID, err)
				continue
			}
			delivered = append(delivered, fresh[i])
		}
		logging.Infof("[arb-engine] recorded %d/%d opportunities", len(delivered), len(opps))
	}
	// Only delivered pairs count as published.
	if err := cache.Remember(ctx, e.cache, delivered, now); err != nil {
		logging.Errorf("[arb-engine] remember published: %v", err)
	}
	report.PrintSummary(e.out, fresh)
	return nil
}
