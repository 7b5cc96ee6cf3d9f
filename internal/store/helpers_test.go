package store

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/notesql/internal/ir"
	"github.com/roach88/notesql/internal/model"
	"github.com/roach88/notesql/internal/querysql"
	"github.com/roach88/notesql/internal/schema"
	"github.com/roach88/notesql/internal/testutil"
)

// createTestDB opens a fresh SQLite database in a temp dir.
func createTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	db     *DB
	pool   *testutil.CountingPool
	facade *Facade
	reg    *schema.Registry
	notes  *schema.Schema
	logs   *bytes.Buffer
}

// newFixture opens a database with the notes and users tables created and
// a Facade whose pool counts acquisitions. Logs are JSON in f.logs.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db := createTestDB(t)
	reg, err := schema.Build(model.Definitions()...)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	require.NoError(t, db.Facade().EnsureTables(context.Background(), reg))

	pool := testutil.NewCountingPool(db.SQL())
	base := []Option{WithLogger(logger), WithIDGenerator(testutil.NewSequenceIDGenerator())}
	facade := NewFacade(pool, querysql.SQLite, append(base, opts...)...)

	return &fixture{
		db:     db,
		pool:   pool,
		facade: facade,
		reg:    reg,
		notes:  reg.MustLookup("notes"),
		logs:   logs,
	}
}

// insertNote adds a note through the facade and returns its id.
func (f *fixture) insertNote(t *testing.T, title, author string, pubDate int64) int64 {
	t.Helper()
	res, err := f.facade.Insert(context.Background(), f.notes, map[string]ir.Value{
		"title":    ir.String(title),
		"author":   ir.String(author),
		"pub_date": ir.Int(pubDate),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.RowsAffected)
	return res.LastInsertID
}
