package irbank

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteCache is a SQLite-backed Cache. Designed for:
//   - Development and testing with zero setup
//   - Single-process compilers requiring persistence across runs
//   - Local prototyping before migrating to a shared MySQLCache
//
// Schema:
//   - bodies: fingerprint -> serialized payload
//   - fused_pairs: (fp_a, fp_b) -> fingerprint of the fused body
//   - demotions: (fingerprint, region_key) -> fingerprint of the rewritten body
type SQLiteCache struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteCache opens (creating if absent) a SQLite-backed cache at path.
// Use ":memory:" for an ephemeral database.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("irbank: open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("irbank: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("irbank: set busy timeout: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("irbank: create tables: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bodies (
			fingerprint TEXT PRIMARY KEY,
			payload     BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fused_pairs (
			fp_a        TEXT NOT NULL,
			fp_b        TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			PRIMARY KEY (fp_a, fp_b)
		)`,
		`CREATE TABLE IF NOT EXISTS demotions (
			fingerprint TEXT NOT NULL,
			region_key  TEXT NOT NULL,
			rewritten   TEXT NOT NULL,
			PRIMARY KEY (fingerprint, region_key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *SQLiteCache) GetBody(ctx context.Context, fingerprint string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var payload []byte
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM bodies WHERE fingerprint = ?`, fingerprint).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("irbank: get body: %w", err)
	}
	return payload, nil
}

func (c *SQLiteCache) PutBody(ctx context.Context, fingerprint string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO bodies (fingerprint, payload) VALUES (?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload`,
		fingerprint, payload)
	if err != nil {
		return fmt.Errorf("irbank: put body: %w", err)
	}
	return nil
}

func (c *SQLiteCache) GetFused(ctx context.Context, a, b string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var fp string
	err := c.db.QueryRowContext(ctx, `SELECT fingerprint FROM fused_pairs WHERE fp_a = ? AND fp_b = ?`, a, b).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("irbank: get fused: %w", err)
	}
	return fp, nil
}

func (c *SQLiteCache) PutFused(ctx context.Context, a, b, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO fused_pairs (fp_a, fp_b, fingerprint) VALUES (?, ?, ?)
		 ON CONFLICT(fp_a, fp_b) DO UPDATE SET fingerprint = excluded.fingerprint`,
		a, b, fingerprint)
	if err != nil {
		return fmt.Errorf("irbank: put fused: %w", err)
	}
	return nil
}

func (c *SQLiteCache) GetDemotion(ctx context.Context, fingerprint, regionKey string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var rewritten string
	err := c.db.QueryRowContext(ctx,
		`SELECT rewritten FROM demotions WHERE fingerprint = ? AND region_key = ?`, fingerprint, regionKey).Scan(&rewritten)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("irbank: get demotion: %w", err)
	}
	return rewritten, nil
}

func (c *SQLiteCache) PutDemotion(ctx context.Context, fingerprint, regionKey, rewritten string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO demotions (fingerprint, region_key, rewritten) VALUES (?, ?, ?)
		 ON CONFLICT(fingerprint, region_key) DO UPDATE SET rewritten = excluded.rewritten`,
		fingerprint, regionKey, rewritten)
	if err != nil {
		return fmt.Errorf("irbank: put demotion: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}
