package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// Pragmas applied to every connection. journal_mode is added only for file
// databases since WAL does not apply to in-memory ones.
var basePragmas = []string{
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
}

const readerPoolSize = 4

// DB holds a single-connection writer pool, which serializes writes so
// SQLite never reports "database is locked", and a small reader pool.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens the database file at dbPath in WAL mode.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	pragmas := append([]string{"journal_mode(WAL)", "cache_size(-64000)"}, basePragmas...)
	return open(ctx, "file:"+dbPath, dbPath, readerPoolSize, pragmas)
}

// NewMemoryDB opens a named shared-cache in-memory database. Connections
// opened with the same name see the same data for as long as one stays open.
func NewMemoryDB(ctx context.Context, name string) (*DB, error) {
	// Escaped so the name cannot be read as DSN query parameters.
	target := "file:" + url.PathEscape(name) + "?mode=memory&cache=shared"
	return open(ctx, target, ":memory:"+name, 1, basePragmas)
}

func open(ctx context.Context, target, path string, readers int, pragmas []string) (*DB, error) {
	dsn := withPragmas(target, pragmas)

	writer, err := openPool(ctx, dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	reader, err := openPool(ctx, dsn, readers)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader, path: path}, nil
}

func openPool(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxConns)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func withPragmas(target string, pragmas []string) string {
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, "_pragma="+p)
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + strings.Join(params, "&")
}

// Path returns the database file path, or ":memory:<name>" for in-memory
// databases.
func (db *DB) Path() string {
	return db.path
}

// Close closes both pools.
func (db *DB) Close() error {
	return errors.Join(
		wrapClose("reader", db.Reader.Close()),
		wrapClose("writer", db.Writer.Close()),
	)
}

func wrapClose(pool string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("close %s: %w", pool, err)
}
