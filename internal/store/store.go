package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver (cgo)
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)

	"github.com/roach88/notesql/internal/querysql"
)

// DefaultDriver is used when no driver is configured.
const DefaultDriver = "sqlite3"

// Pool hands out connections for exactly one statement each.
// *sql.DB implements Pool.
type Pool interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// DB is a database handle plus the dialect its statements compile to.
type DB struct {
	db      *sql.DB
	driver  string
	dialect querysql.Dialect
}

// Open opens a database with the given database/sql driver and DSN.
//
// Recognized drivers: sqlite3 (mattn/go-sqlite3), sqlite (modernc.org/sqlite),
// postgres, and mysql. SQLite databases are configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - a single open connection, since SQLite allows one writer
func Open(driver, dsn string) (*DB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	dialect, err := querysql.DialectForDriver(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == querysql.SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	return &DB{db: db, driver: driver, dialect: dialect}, nil
}

// Close closes the database handle.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SQL returns the underlying *sql.DB. It is also the connection Pool.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Driver returns the driver name the database was opened with.
func (d *DB) Driver() string {
	return d.driver
}

// Dialect returns the placeholder dialect for this database.
func (d *DB) Dialect() querysql.Dialect {
	return d.dialect
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (d *DB) verifyPragma(name, expected string) error {
	var value string
	if err := d.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
