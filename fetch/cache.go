package fetch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"craigslist-rental-market/utils"
)

const createResponsesTable = `
CREATE TABLE IF NOT EXISTS responses (
	url        TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);`

// CachedFetcher serves repeated GETs from an SQLite file while they are
// younger than the TTL. Only successful responses are stored. It is safe for
// concurrent use.
type CachedFetcher struct {
	next   Fetcher
	db     *sql.DB
	ttl    time.Duration
	logger *utils.Logger
	now    func() time.Time
}

// NewCachedFetcher opens (or creates) the cache database at path and wraps next.
func NewCachedFetcher(path string, ttl time.Duration, next Fetcher, logger *utils.Logger) (*CachedFetcher, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cache: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %q: %w", path, err)
	}
	// One connection serialises writers; SQLite would otherwise report SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createResponsesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}

	return &CachedFetcher{
		next:   next,
		db:     db,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (c *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM responses WHERE url = ?`, url).Scan(&body, &fetchedAt)
	switch {
	case err == nil:
		if c.now().Sub(time.Unix(0, fetchedAt)) < c.ttl {
			c.logger.Debug("[cache] hit %s", url)
			return body, nil
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		c.logger.Warn("[cache] lookup %s: %v", url, err)
	}

	body, err = c.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO responses (url, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		url, body, c.now().UnixNano())
	if err != nil {
		c.logger.Warn("[cache] store %s: %v", url, err)
	}
	return body, nil
}

// PurgeExpired deletes stale entries and returns how many were removed.
func (c *CachedFetcher) PurgeExpired() (int64, error) {
	cutoff := c.now().Add(-c.ttl).UnixNano()
	res, err := c.db.Exec(`DELETE FROM responses WHERE fetched_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache: purge: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the cache database.
func (c *CachedFetcher) Close() error {
	return c.db.Close()
}
