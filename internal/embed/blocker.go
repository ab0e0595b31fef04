package embed

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
)

// Blocker prunes pairs whose text embeddings are far apart. Vectors are
// fetched up front by Prepare so that Keep does no I/O.
type Blocker struct {
	embedder  Embedder
	minCosine float64
	workers   int

	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewBlocker(e Embedder, minCosine float64, workers int) *Blocker {
	if workers <= 0 {
		workers = 4
	}
	return &Blocker{
		embedder:  e,
		minCosine: minCosine,
		workers:   workers,
		vectors:   make(map[string][]float32),
	}
}

// Prepare embeds every distinct market text not seen yet.
func (b *Blocker) Prepare(ctx context.Context, catalogs ...[]models.Market) error {
	pending := make(map[string]string)
	b.mu.RLock()
	for _, markets := range catalogs {
		for i := range markets {
			text := markets[i].Text()
			if text == "" {
				continue
			}
			key := matches.TextKey(text)
			if _, ok := b.vectors[key]; !ok {
				pending[key] = text
			}
		}
	}
	b.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for key, text := range pending {
		g.Go(func() error {
			vec, err := b.embedder.Embed(ctx, text)
			if err != nil {
				return fmt.Errorf("embed %q: %w", key, err)
			}
			b.mu.Lock()
			b.vectors[key] = vec
			b.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logging.Debugf("[embed] prepared %d new vectors", len(pending))
	return nil
}

// Keep passes pairs with cosine at or above the floor. A market without a
// vector cannot be judged and is kept.
func (b *Blocker) Keep(x, y *models.Market) bool {
	b.mu.RLock()
	vx, okx := b.vectors[matches.TextKey(x.Text())]
	vy, oky := b.vectors[matches.TextKey(y.Text())]
	b.mu.RUnlock()
	if !okx || !oky {
		return true
	}
	return Cosine(vx, vy) >= b.minCosine
}

// Cosine similarity of two vectors; 0 when lengths differ or either is zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
