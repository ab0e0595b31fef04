package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hetulpatel/arbscanner/internal/matches"
	"github.com/hetulpatel/arbscanner/internal/models"
)

const (
	defaultPath = "data/arbscanner.db"
)

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the markets and arb_opportunities tables exist.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropTables removes both tables.
func (s *Store) DropTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS markets; DROP TABLE IF EXISTS arb_opportunities;`)
	return err
}

// ClearTables deletes every row but keeps the schema.
func (s *Store) ClearTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM markets; DELETE FROM arb_opportunities;`)
	return err
}

// MigrateToUnifiedSchema drops the per-venue tables older builds wrote and
// recreates the current schema. Market rows are rebuilt on the next fetch;
// opportunity history is kept.
func (s *Store) MigrateToUnifiedSchema(ctx context.Context) error {
	stmts := []string{
		`DROP TABLE IF EXISTS markets;`,
		`DROP TABLE IF EXISTS polymarket_markets;`,
		`DROP TABLE IF EXISTS kalshi_markets;`,
		schemaSQL,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS markets (
	venue TEXT NOT NULL,
	market_id TEXT NOT NULL,
	question TEXT,
	description TEXT,
	category TEXT,
	tags_json TEXT,
	slug TEXT,
	end_date TEXT,
	active INTEGER NOT NULL DEFAULT 0,
	closed INTEGER NOT NULL DEFAULT 0,
	yes_price REAL,
	no_price REAL,
	volume REAL,
	volume_24h REAL,
	liquidity REAL,
	text_hash TEXT,
	last_seen_at TEXT,
	PRIMARY KEY (venue, market_id)
);
CREATE INDEX IF NOT EXISTS markets_category_idx ON markets(venue, category);
CREATE TABLE IF NOT EXISTS arb_opportunities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pair_id TEXT NOT NULL,
	profile TEXT,
	side TEXT,
	direction TEXT,
	profit_potential REAL,
	risk_level TEXT,
	confidence REAL,
	similarity REAL,
	time_to_expiry REAL,
	expiry_known INTEGER NOT NULL DEFAULT 0,
	market_a_venue TEXT,
	market_a_id TEXT,
	market_b_venue TEXT,
	market_b_id TEXT,
	warnings_json TEXT,
	opportunity_json TEXT,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS arb_opportunities_pair_idx ON arb_opportunities(pair_id, recorded_at);
`

const upsertMarketSQL = `
INSERT INTO markets (
	venue, market_id, question, description, category, tags_json, slug, end_date,
	active, closed, yes_price, no_price, volume, volume_24h, liquidity, text_hash, last_seen_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(venue, market_id) DO UPDATE SET
	question=excluded.question,
	description=excluded.description,
	category=excluded.category,
	tags_json=excluded.tags_json,
	slug=excluded.slug,
	end_date=excluded.end_date,
	active=excluded.active,
	closed=excluded.closed,
	yes_price=excluded.yes_price,
	no_price=excluded.no_price,
	volume=excluded.volume,
	volume_24h=excluded.volume_24h,
	liquidity=excluded.liquidity,
	text_hash=excluded.text_hash,
	last_seen_at=excluded.last_seen_at;
`

// UpsertMarkets inserts or refreshes one row per market in a single transaction.
func (s *Store) UpsertMarkets(ctx context.Context, markets []models.Market, seenAt time.Time) error {
	if len(markets) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, upsertMarketSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	ts := formatTime(seenAt)
	for i := range markets {
		if err := execUpsert(ctx, stmt, &markets[i], ts); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %s:%s: %w", markets[i].Venue, markets[i].ID, err)
		}
	}
	return tx.Commit()
}

func execUpsert(ctx context.Context, stmt *sql.Stmt, m *models.Market, ts string) error {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx,
		string(m.Venue),
		m.ID,
		m.Question,
		m.Description,
		m.Category,
		string(tagsJSON),
		m.Slug,
		formatTime(m.EndDate),
		boolInt(m.Active),
		boolInt(m.Closed),
		m.Price.Yes,
		m.Price.No,
		m.Volume,
		m.Volume24h,
		m.Liquidity,
		matches.TextKey(m.Text()),
		ts,
	)
	return err
}

// LoadCatalog reads back the stored markets of one venue, ordered by ID.
// CapturedAt is the latest last_seen_at among them.
func (s *Store) LoadCatalog(ctx context.Context, venue models.Venue) (models.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT market_id, question, description, category, tags_json, slug, end_date,
	active, closed, yes_price, no_price, volume, volume_24h, liquidity, last_seen_at
FROM markets WHERE venue = ? ORDER BY market_id`, string(venue))
	if err != nil {
		return models.Catalog{}, err
	}
	defer rows.Close()

	var (
		out    []models.Market
		latest time.Time
	)
	for rows.Next() {
		m := models.Market{Venue: venue}
		var (
			tagsJSON, endDate, seen string
			active, closed          int
		)
		if err := rows.Scan(&m.ID, &m.Question, &m.Description, &m.Category, &tagsJSON, &m.Slug, &endDate,
			&active, &closed, &m.Price.Yes, &m.Price.No, &m.Volume, &m.Volume24h, &m.Liquidity, &seen); err != nil {
			return models.Catalog{}, err
		}
		if tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
				return models.Catalog{}, fmt.Errorf("decode tags for %s: %w", m.ID, err)
			}
		}
		m.EndDate = parseTime(endDate)
		m.Active = active != 0
		m.Closed = closed != 0
		if t := parseTime(seen); t.After(latest) {
			latest = t
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return models.Catalog{}, err
	}
	return models.NewCatalog(venue, out, latest), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
