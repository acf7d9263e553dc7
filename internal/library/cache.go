package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/retroscribe/internal/gateway"
)

// Cache is a sqlite-backed read-through cache of the backend's recording
// library. It is authoritative between mutations; a TTL bounds staleness
// when the backend is shared.
type Cache struct {
	db  *sql.DB
	mu  sync.RWMutex
	ttl time.Duration
}

// NewCache opens (or creates) the cache database at path
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cache := &Cache{db: db, ttl: ttl}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return cache, nil
}

// initSchema creates the necessary tables
func (c *Cache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recordings (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		title TEXT,
		timestamp TEXT,
		date_created TEXT,
		size_bytes INTEGER
	);

	CREATE TABLE IF NOT EXISTS cache_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recordings_created ON recordings(date_created DESC);
	`

	_, err := c.db.Exec(schema)
	return err
}

// List returns the cached recordings. ok is false when the cache has never
// been filled, was invalidated, or has passed its TTL.
func (c *Cache) List() ([]gateway.Recording, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.freshLocked() {
		return nil, false
	}

	rows, err := c.db.Query(`
		SELECT id, filename, title, timestamp, date_created, size_bytes
		FROM recordings ORDER BY date_created DESC
	`)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var recordings []gateway.Recording
	for rows.Next() {
		var rec gateway.Recording
		var title sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Filename, &title, &rec.Timestamp, &rec.DateCreated, &rec.SizeBytes); err != nil {
			return nil, false
		}
		if title.Valid {
			rec.Title = title.String
		}
		recordings = append(recordings, rec)
	}

	return recordings, true
}

// Get returns one cached recording by id
func (c *Cache) Get(id string) (*gateway.Recording, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.freshLocked() {
		return nil, false
	}

	var rec gateway.Recording
	var title sql.NullString
	err := c.db.QueryRow(`
		SELECT id, filename, title, timestamp, date_created, size_bytes
		FROM recordings WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Filename, &title, &rec.Timestamp, &rec.DateCreated, &rec.SizeBytes)
	if err != nil {
		return nil, false
	}
	if title.Valid {
		rec.Title = title.String
	}

	return &rec, true
}

// ReplaceAll swaps the cache content with a fresh backend listing
func (c *Cache) ReplaceAll(recordings []gateway.Recording) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM recordings`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO recordings (id, filename, title, timestamp, date_created, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recordings {
		if _, err := stmt.Exec(rec.ID, rec.Filename, rec.Title, rec.Timestamp, rec.DateCreated, rec.SizeBytes); err != nil {
			return fmt.Errorf("failed to insert recording: %w", err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO cache_meta (key, value) VALUES ('fetched_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to update cache meta: %w", err)
	}

	return tx.Commit()
}

// Invalidate marks the cache stale, forcing the next List to refetch
func (c *Cache) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`DELETE FROM cache_meta WHERE key = 'fetched_at'`)
	return err
}

// freshLocked reports whether the cache was filled within the TTL
func (c *Cache) freshLocked() bool {
	var value string
	err := c.db.QueryRow(`SELECT value FROM cache_meta WHERE key = 'fetched_at'`).Scan(&value)
	if err != nil {
		return false
	}

	fetchedAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return false
	}

	if c.ttl > 0 && time.Since(fetchedAt) > c.ttl {
		return false
	}
	return true
}

// Close closes the database connection
func (c *Cache) Close() error {
	return c.db.Close()
}
