// Package store is the SQL persistence behind the summon engine: name pools,
// grade catalog, soldiers, the summon log, characters and the XP curve.
// It runs on SQLite (modernc.org/sqlite) or PostgreSQL (pgx stdlib).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/xtding233/summon-backend/internal/store/migrations"
	"github.com/xtding233/summon-backend/internal/summon"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert hits a unique constraint.
var ErrConflict = errors.New("already exists")

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps a database/sql handle and its dialect.
type Store struct {
	db      *sql.DB
	dialect Dialect

	rngMu sync.Mutex
	rng   summon.RandomSource
}

// Open connects to driver ("sqlite" or "postgres") and pings it.
// Name draws use the crypto-backed RNG; see SetRandomSource.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d := NewDialect(driver)
	if d == nil {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if d.Name() == DialectSQLite {
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if d.Name() == DialectSQLite {
		// single writer; also keeps :memory: databases on one connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	for _, stmt := range d.InitStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init %q: %w", stmt, err)
		}
	}
	return &Store{db: db, dialect: d, rng: summon.DefaultRNG()}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Dialect returns the SQL dialect in use.
func (s *Store) Dialect() Dialect { return s.dialect }

// Ping checks the connection; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// SetRandomSource replaces the RNG used for name draws.
func (s *Store) SetRandomSource(rng summon.RandomSource) {
	s.rngMu.Lock()
	s.rng = rng
	s.rngMu.Unlock()
}

func (s *Store) pickIndex(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return summon.PickIndex(s.rng, n)
}

// Migrate applies the embedded goose migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	fsys, err := fs.Sub(migrations.FS, s.dialect.Name())
	if err != nil {
		return 0, fmt.Errorf("migrations for %s: %w", s.dialect.Name(), err)
	}
	gooseDialect := goose.DialectSQLite3
	if s.dialect.Name() == DialectPostgres {
		gooseDialect = goose.DialectPostgres
	}
	p, err := goose.NewProvider(gooseDialect, s.db, fsys)
	if err != nil {
		return 0, fmt.Errorf("creating migration provider: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("running migrations: %w", err)
	}
	return len(results), nil
}

// ensureSQLiteDir creates the parent directory of a file-backed SQLite DSN.
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	return nil
}

func (s *Store) q(query string) string { return s.dialect.Rebind(query) }

// insertID runs an INSERT and returns the new row id.
func (s *Store) insertID(ctx context.Context, x dbtx, query string, args ...any) (int64, error) {
	if s.dialect.SupportsLastInsertID() {
		res, err := x.ExecContext(ctx, s.q(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	var id int64
	err := x.QueryRowContext(ctx, s.q(query)+" RETURNING id", args...).Scan(&id)
	return id, err
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
