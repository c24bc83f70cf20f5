package store

import (
	"strconv"
	"strings"
)

// Dialect abstracts SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// Name is the config/goose name: "sqlite" or "postgres".
	Name() string
	// DriverName is the database/sql driver registered for the dialect.
	DriverName() string
	// Rebind rewrites ? placeholders into the dialect's form.
	Rebind(query string) string
	// SupportsLastInsertID is false when INSERT needs RETURNING id.
	SupportsLastInsertID() bool
	// InitStatements run once after opening a connection.
	InitStatements() []string
	// IsDuplicateKeyError reports a unique constraint violation.
	IsDuplicateKeyError(err error) bool
}

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// NewDialect returns the dialect for name, or nil if unsupported.
func NewDialect(name string) Dialect {
	switch name {
	case DialectSQLite:
		return sqliteDialect{}
	case DialectPostgres:
		return postgresDialect{}
	default:
		return nil
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string               { return DialectSQLite }
func (sqliteDialect) DriverName() string         { return "sqlite" } // modernc.org/sqlite
func (sqliteDialect) Rebind(query string) string { return query }
func (sqliteDialect) SupportsLastInsertID() bool { return true }

func (sqliteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (sqliteDialect) IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type postgresDialect struct{}

func (postgresDialect) Name() string               { return DialectPostgres }
func (postgresDialect) DriverName() string         { return "pgx" } // jackc/pgx/v5/stdlib
func (postgresDialect) SupportsLastInsertID() bool { return false }
func (postgresDialect) InitStatements() []string   { return nil }

// Rebind converts ? to $1, $2, ...
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// IsDuplicateKeyError matches SQLSTATE 23505 (unique_violation).
func (postgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "23505") || strings.Contains(s, "duplicate key")
}
