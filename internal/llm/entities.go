package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/arbscanner/internal/cache"
	"github.com/hetulpatel/arbscanner/internal/entities"
	"github.com/hetulpatel/arbscanner/internal/logging"
	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
)

const entitySystemPrompt = "You extract entities from prediction market questions. Respond only with JSON."

const entityUserPrompt = `List the entities in the market question below.
"dates": years or year-months as written (e.g. "2025", "2025-03").
"numbers": numeric thresholds as written, keep a trailing "%" if present.
"companies": proper names of people, organizations, assets or places, each as it appears.
Return EXACTLY this JSON format:
{"dates": [], "numbers": [], "companies": []}

Question:
`

// EntityExtractor asks an LLM for entities. Warm does the network work up
// front; Extract only reads what Warm stored and falls back to the regex
// extractor for texts it has not seen, so scoring stays free of I/O.
type EntityExtractor struct {
	llm      Completer
	cache    cache.EntityCache
	fallback entities.Extractor
	workers  int

	mu    sync.RWMutex
	known map[string]entities.Entities
}

func NewEntityExtractor(c Completer, ec cache.EntityCache, workers int) *EntityExtractor {
	if workers <= 0 {
		workers = 4
	}
	return &EntityExtractor{
		llm:      c,
		cache:    ec,
		fallback: entities.NewRegexExtractor(),
		workers:  workers,
		known:    make(map[string]entities.Entities),
	}
}

func (e *EntityExtractor) Extract(text string) entities.Entities {
	e.mu.RLock()
	ents, ok := e.known[matches.TextKey(text)]
	e.mu.RUnlock()
	if ok {
		return ents
	}
	return e.fallback.Extract(text)
}

// WarmMarkets warms the texts of every market in the catalogs.
func (e *EntityExtractor) WarmMarkets(ctx context.Context, catalogs ...[]models.Market) error {
	var texts []string
	for _, markets := range catalogs {
		for i := range markets {
			texts = append(texts, markets[i].Text())
		}
	}
	return e.Warm(ctx, texts)
}

// Warm resolves entities for texts not yet known, from the cache or the LLM.
// A failed LLM call or unparseable reply leaves that text on the fallback.
// Only context cancellation is returned as an error.
func (e *EntityExtractor) Warm(ctx context.Context, texts []string) error {
	pending := make(map[string]string)
	e.mu.RLock()
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		key := matches.TextKey(text)
		if _, ok := e.known[key]; !ok {
			pending[key] = text
		}
	}
	e.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for key, text := range pending {
		g.Go(func() error {
			ents, ok := e.resolve(gctx, key, text)
			if !ok {
				return gctx.Err()
			}
			e.mu.Lock()
			e.known[key] = ents
			e.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (e *EntityExtractor) resolve(ctx context.Context, key, text string) (entities.Entities, bool) {
	if e.cache != nil {
		ents, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			logging.Warnf("[llm] entity cache get: %v", err)
		} else if ok {
			return ents, true
		}
	}
	raw, err := e.llm.Complete(ctx, entitySystemPrompt, entityUserPrompt+text)
	if err != nil {
		logging.Warnf("[llm] entity extraction failed, using regex: %v", err)
		return entities.Entities{}, false
	}
	ents, err := parseEntities(raw)
	if err != nil {
		logging.Warnf("[llm] entity reply unparseable, using regex: %v", err)
		return entities.Entities{}, false
	}
	if e.cache != nil {
		if err := e.cache.Set(ctx, key, ents); err != nil {
			logging.Warnf("[llm] entity cache set: %v", err)
		}
	}
	return ents, true
}

func parseEntities(raw string) (entities.Entities, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entities.Entities{}, fmt.Errorf("llm: empty response")
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	var out entities.Entities
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return entities.Entities{}, err
	}
	out.Dates = clean(out.Dates)
	out.Numbers = clean(out.Numbers)
	out.Companies = clean(out.Companies)
	return out, nil
}

func clean(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
