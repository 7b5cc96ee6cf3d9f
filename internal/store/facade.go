package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/roach88/notesql/internal/ir"
	"github.com/roach88/notesql/internal/query"
	"github.com/roach88/notesql/internal/querysql"
	"github.com/roach88/notesql/internal/schema"
)

// Facade executes validated dynamic queries against a Pool.
//
// Every call validates and compiles first; a rejected request never
// acquires a connection. An accepted request acquires exactly one
// connection, runs exactly one statement, and releases the connection on
// every exit path. No transactions and no retries.
//
// Facade holds no mutable state and is safe for concurrent use.
type Facade struct {
	pool     Pool
	compiler *querysql.Compiler
	logger   *slog.Logger
	ids      IDGenerator

	allowFullTableDelete bool
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the structured logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(f *Facade) {
		f.logger = l
	}
}

// WithIDGenerator sets the operation id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(f *Facade) {
		f.ids = g
	}
}

// WithFullTableDelete permits Delete with an empty filter.
func WithFullTableDelete(allow bool) Option {
	return func(f *Facade) {
		f.allowFullTableDelete = allow
	}
}

// NewFacade creates a Facade that compiles for dialect and executes on pool.
func NewFacade(pool Pool, dialect querysql.Dialect, opts ...Option) *Facade {
	f := &Facade{
		pool:     pool,
		compiler: querysql.NewCompiler(dialect),
		logger:   slog.New(slog.DiscardHandler),
		ids:      UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Facade returns a Facade over d's connection pool.
func (d *DB) Facade(opts ...Option) *Facade {
	return NewFacade(d.db, d.dialect, opts...)
}

// Result reports the effect of a write.
type Result struct {
	RowsAffected int64 `json:"rows_affected"`
	// LastInsertID is set by Insert on drivers that report it.
	LastInsertID int64 `json:"last_insert_id,omitempty"`
}

// Get returns the rows of s matching filter, projected onto columns.
// An empty filter matches every row; an empty column list selects all.
//
// Errors: UNKNOWN_COLUMN, OPERATOR_NOT_ALLOWED, MALFORMED_FILTER,
// TYPE_MISMATCH (no connection acquired), CONNECTION_ACQUISITION_FAILURE,
// STATEMENT_EXECUTION_FAILURE, ROW_DECODE_FAILURE.
func (f *Facade) Get(ctx context.Context, s *schema.Schema, filter query.Filter, columns []string) ([]ir.Document, error) {
	log := f.opLogger("get", s)

	stmt, binds, err := f.compiler.CompileSelect(s, filter, columns)
	if err != nil {
		log.Debug("request rejected", "error", err)
		return nil, err
	}

	conn, err := f.acquire(ctx, log)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	logStatement(ctx, log, stmt, binds)
	rows, err := conn.QueryContext(ctx, stmt, binds...)
	if err != nil {
		log.Warn("statement failed", "error", err)
		return nil, query.NewExecutionError(s.TableName().String(), err)
	}
	defer rows.Close()

	docs, err := Materialize(rows, s)
	if err != nil {
		if query.IsCode(err, query.ErrCodeRowDecode) {
			log.Error("row decode failed", "kind", "row_decode", "error", err)
		}
		return nil, err
	}

	log.Info("get complete", "rows", len(docs))
	return docs, nil
}

// Update applies u to s. A zero-match update is not an error; it reports
// RowsAffected == 0.
func (f *Facade) Update(ctx context.Context, s *schema.Schema, u query.Updater) (Result, error) {
	log := f.opLogger("update", s)

	stmt, binds, err := f.compiler.CompileUpdate(s, u)
	if err != nil {
		log.Debug("request rejected", "error", err)
		return Result{}, err
	}

	res, err := f.exec(ctx, log, s, stmt, binds)
	if err != nil {
		return Result{}, err
	}
	log.Info("update complete", "rows", res.RowsAffected)
	return res, nil
}

// Insert adds one row to s. Columns absent from values take their defaults.
func (f *Facade) Insert(ctx context.Context, s *schema.Schema, values map[string]ir.Value) (Result, error) {
	log := f.opLogger("insert", s)

	stmt, binds, err := f.compiler.CompileInsert(s, values)
	if err != nil {
		log.Debug("request rejected", "error", err)
		return Result{}, err
	}

	res, err := f.exec(ctx, log, s, stmt, binds)
	if err != nil {
		return Result{}, err
	}
	log.Info("insert complete", "rows", res.RowsAffected, "id", res.LastInsertID)
	return res, nil
}

// Delete removes the rows of s matching filter. An empty filter is
// rejected with MALFORMED_FILTER unless WithFullTableDelete(true).
func (f *Facade) Delete(ctx context.Context, s *schema.Schema, filter query.Filter) (Result, error) {
	log := f.opLogger("delete", s)

	if len(filter) == 0 && !f.allowFullTableDelete {
		err := query.NewMalformedFilterError("delete from %s requires a filter", s.TableName())
		log.Debug("request rejected", "error", err)
		return Result{}, err
	}

	stmt, binds, err := f.compiler.CompileDelete(s, filter)
	if err != nil {
		log.Debug("request rejected", "error", err)
		return Result{}, err
	}

	res, err := f.exec(ctx, log, s, stmt, binds)
	if err != nil {
		return Result{}, err
	}
	log.Info("delete complete", "rows", res.RowsAffected)
	return res, nil
}

// EnsureTables creates every table in reg that does not exist yet.
// Existing tables are left untouched.
func (f *Facade) EnsureTables(ctx context.Context, reg *schema.Registry) error {
	log := f.logger.With("op_id", f.ids.Generate(), "op", "migrate")

	conn, err := f.acquire(ctx, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, s := range reg.Schemas() {
		stmt := f.compiler.CompileCreateTable(s)
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			log.Warn("create table failed", "table", s.TableName().String(), "error", err)
			return query.NewExecutionError(s.TableName().String(), err)
		}
		log.Debug("table ensured", "table", s.TableName().String())
	}
	return nil
}

func (f *Facade) opLogger(op string, s *schema.Schema) *slog.Logger {
	return f.logger.With("op_id", f.ids.Generate(), "op", op, "table", s.TableName().String())
}

func (f *Facade) acquire(ctx context.Context, log *slog.Logger) (*sql.Conn, error) {
	conn, err := f.pool.Conn(ctx)
	if err != nil {
		log.Warn("connection acquisition failed", "error", err)
		return nil, query.NewConnectionError(err)
	}
	return conn, nil
}

func (f *Facade) exec(ctx context.Context, log *slog.Logger, s *schema.Schema, stmt string, binds []any) (Result, error) {
	table := s.TableName().String()

	conn, err := f.acquire(ctx, log)
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	logStatement(ctx, log, stmt, binds)
	res, err := conn.ExecContext(ctx, stmt, binds...)
	if err != nil {
		log.Warn("statement failed", "error", err)
		return Result{}, query.NewExecutionError(table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Result{}, query.NewExecutionError(table, err)
	}
	out := Result{RowsAffected: n}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out, nil
}

// logStatement records the statement text and its content id. Bind values
// are not logged; only their count.
func logStatement(ctx context.Context, log *slog.Logger, stmt string, binds []any) {
	if !log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	id, err := ir.StatementID(stmt, binds)
	if err != nil {
		id = "unavailable"
	}
	log.Debug("executing", "sql", stmt, "binds", len(binds), "statement_id", id)
}
