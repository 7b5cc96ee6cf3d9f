package querysql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/notesql/internal/ir"
	"github.com/roach88/notesql/internal/query"
	"github.com/roach88/notesql/internal/schema"
)

// Compiler turns validated query structures into parameterized SQL.
//
// Identifiers written into statement text always come from the schema
// (schema.Ident), never from the request. Literals are never interpolated;
// every value is a bind, in placeholder order.
//
// Each Compile method validates its input first, so a returned statement is
// always well formed and correctly typed.
type Compiler struct {
	dialect Dialect
}

// NewCompiler creates a Compiler for the given dialect.
func NewCompiler(d Dialect) *Compiler {
	if d == "" {
		d = SQLite
	}
	return &Compiler{dialect: d}
}

// Dialect returns the placeholder dialect.
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

// CompileWhere compiles f into a WHERE clause and its binds.
// Returns ("", nil, nil) for the empty filter.
//
// Example: "WHERE title = ? AND pub_date > ?", ["Test", 0]
func (c *Compiler) CompileWhere(s *schema.Schema, f query.Filter) (string, []any, error) {
	if err := f.Validate(s); err != nil {
		return "", nil, err
	}
	where, binds, err := compileFilter(s, f)
	if err != nil {
		return "", nil, err
	}
	return c.dialect.Rebind(where), binds, nil
}

// CompileSelect compiles a single-table SELECT. An empty column list
// selects every column.
func (c *Compiler) CompileSelect(s *schema.Schema, f query.Filter, columns []string) (string, []any, error) {
	if err := query.ValidateColumns(s, columns); err != nil {
		return "", nil, err
	}
	if err := f.Validate(s); err != nil {
		return "", nil, err
	}

	projection := "*"
	if len(columns) > 0 {
		// A repeated column is projected once, where it first appears.
		idents := make([]string, 0, len(columns))
		seen := make(map[string]bool, len(columns))
		for _, name := range columns {
			col, _ := s.Column(name)
			if seen[col.Name.String()] {
				continue
			}
			seen[col.Name.String()] = true
			idents = append(idents, col.Name.String())
		}
		projection = strings.Join(idents, ", ")
	}

	where, binds, err := compileFilter(s, f)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", projection, s.TableName())
	return c.finish(sql, where), binds, nil
}

// CompileUpdate compiles u into an UPDATE. Assignments are emitted in
// column-name order and their binds precede the filter binds.
//
// Example: "UPDATE notes SET pub_date = ? WHERE title = ?", [-2000, "Test"]
func (c *Compiler) CompileUpdate(s *schema.Schema, u query.Updater) (string, []any, error) {
	if err := u.Validate(s); err != nil {
		return "", nil, err
	}

	names := u.Columns()
	assignments := make([]string, len(names))
	binds := make([]any, 0, len(names)+len(u.At))
	for i, name := range names {
		col, _ := s.Column(name)
		bind, err := bindValue(s, col, u.Set[name])
		if err != nil {
			return "", nil, err
		}
		assignments[i] = col.Name.String() + " = ?"
		binds = append(binds, bind)
	}

	where, whereBinds, err := compileFilter(s, u.At)
	if err != nil {
		return "", nil, err
	}
	binds = append(binds, whereBinds...)

	sql := fmt.Sprintf("UPDATE %s SET %s", s.TableName(), strings.Join(assignments, ", "))
	return c.finish(sql, where), binds, nil
}

// CompileDelete compiles a DELETE restricted by f. An empty filter deletes
// every row; callers decide whether to allow that.
func (c *Compiler) CompileDelete(s *schema.Schema, f query.Filter) (string, []any, error) {
	if err := f.Validate(s); err != nil {
		return "", nil, err
	}
	where, binds, err := compileFilter(s, f)
	if err != nil {
		return "", nil, err
	}
	return c.finish("DELETE FROM "+s.TableName().String(), where), binds, nil
}

// CompileInsert compiles a single-row INSERT with columns in name order.
// Columns not named take their declared defaults.
func (c *Compiler) CompileInsert(s *schema.Schema, values map[string]ir.Value) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, query.NewEmptyUpdateSetError(s.TableName().String())
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	if err := query.ValidateColumns(s, names); err != nil {
		return "", nil, err
	}

	idents := make([]string, len(names))
	placeholders := make([]string, len(names))
	binds := make([]any, len(names))
	for i, name := range names {
		col, _ := s.Column(name)
		bind, err := bindValue(s, col, values[name])
		if err != nil {
			return "", nil, err
		}
		idents[i] = col.Name.String()
		placeholders[i] = "?"
		binds[i] = bind
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.TableName(),
		strings.Join(idents, ", "),
		strings.Join(placeholders, ", "))
	return c.dialect.Rebind(sql), binds, nil
}

// CompileCreateTable compiles CREATE TABLE IF NOT EXISTS for s.
func (c *Compiler) CompileCreateTable(s *schema.Schema) string {
	fields := s.Fields()
	defs := make([]string, len(fields))
	for i, col := range fields {
		defs[i] = col.Name.String() + " " + c.columnType(col.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.TableName(), strings.Join(defs, ", "))
}

func (c *Compiler) columnType(t schema.ColumnType) string {
	if c.dialect == SQLite {
		return t.SQLType()
	}
	// Integer columns hold int64 everywhere, so INTEGER (32-bit on both
	// servers) is never emitted outside SQLite.
	switch t {
	case schema.PrimaryKey:
		if c.dialect == Postgres {
			return "BIGSERIAL PRIMARY KEY"
		}
		return "BIGINT AUTO_INCREMENT PRIMARY KEY"
	case schema.Integer:
		return "BIGINT NOT NULL DEFAULT 0"
	case schema.Real:
		if c.dialect == Postgres {
			return "DOUBLE PRECISION NOT NULL DEFAULT 0"
		}
		return "DOUBLE NOT NULL DEFAULT 0"
	case schema.Text:
		if c.dialect == MySQL {
			// Text columns are unbounded; MySQL only defaults them through
			// an expression default.
			return "LONGTEXT NOT NULL DEFAULT ('')"
		}
		return t.SQLType()
	default:
		return t.SQLType()
	}
}

func (c *Compiler) finish(sql, where string) string {
	if where != "" {
		sql += " " + where
	}
	return c.dialect.Rebind(sql)
}

// compileFilter assumes f has been validated against s.
func compileFilter(s *schema.Schema, f query.Filter) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}

	var b strings.Builder
	binds := make([]any, 0, len(f))
	b.WriteString("WHERE ")
	for i, cl := range f {
		col, _ := s.Column(cl.Condition.Column)
		bind, err := bindValue(s, col, cl.Condition.Value)
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(string(f[i-1].Connector))
			b.WriteByte(' ')
		}
		b.WriteString(col.Name.String())
		b.WriteByte(' ')
		b.WriteString(string(cl.Condition.Op))
		b.WriteString(" ?")
		binds = append(binds, bind)
	}
	return b.String(), binds, nil
}
