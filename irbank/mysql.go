package irbank

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLCache is a MySQL/MariaDB-backed Cache. Designed for production
// compilers where multiple processes share a fingerprint cache:
//   - Distributed build farms
//   - Long-running compiler daemons that survive restarts
//
// The DSN format matches go-sql-driver/mysql:
//
//	user:password@tcp(localhost:3306)/dbname?parseTime=true
type MySQLCache struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLCache opens a MySQL-backed cache and creates its tables if absent.
func NewMySQLCache(dsn string) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("irbank: open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("irbank: ping mysql: %w", err)
	}

	c := &MySQLCache{db: db}
	if err := c.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("irbank: create tables: %w", err)
	}
	return c, nil
}

func (c *MySQLCache) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bodies (
			fingerprint VARCHAR(128) PRIMARY KEY,
			payload     LONGBLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fused_pairs (
			fp_a        VARCHAR(128) NOT NULL,
			fp_b        VARCHAR(128) NOT NULL,
			fingerprint VARCHAR(128) NOT NULL,
			PRIMARY KEY (fp_a, fp_b)
		)`,
		`CREATE TABLE IF NOT EXISTS demotions (
			fingerprint VARCHAR(128) NOT NULL,
			region_key  VARCHAR(128) NOT NULL,
			rewritten   VARCHAR(128) NOT NULL,
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

func (c *MySQLCache) GetBody(ctx context.Context, fingerprint string) ([]byte, error) {
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

func (c *MySQLCache) PutBody(ctx context.Context, fingerprint string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO bodies (fingerprint, payload) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE payload = VALUES(payload)`,
		fingerprint, payload)
	if err != nil {
		return fmt.Errorf("irbank: put body: %w", err)
	}
	return nil
}

func (c *MySQLCache) GetFused(ctx context.Context, a, b string) (string, error) {
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

func (c *MySQLCache) PutFused(ctx context.Context, a, b, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO fused_pairs (fp_a, fp_b, fingerprint) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE fingerprint = VALUES(fingerprint)`,
		a, b, fingerprint)
	if err != nil {
		return fmt.Errorf("irbank: put fused: %w", err)
	}
	return nil
}

func (c *MySQLCache) GetDemotion(ctx context.Context, fingerprint, regionKey string) (string, error) {
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

func (c *MySQLCache) PutDemotion(ctx context.Context, fingerprint, regionKey, rewritten string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO demotions (fingerprint, region_key, rewritten) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE rewritten = VALUES(rewritten)`,
		fingerprint, regionKey, rewritten)
	if err != nil {
		return fmt.Errorf("irbank: put demotion: %w", err)
	}
	return nil
}

func (c *MySQLCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}
