package schema

import (
	"fmt"
	"sort"
)

// Schema describes one table. It is immutable once built.
type Schema struct {
	table   Ident
	columns []Column
	index   map[string]int
}

// TableName returns the table identifier.
func (s *Schema) TableName() Ident {
	return s.table
}

// Fields returns the columns in declaration order.
// The returned slice is a copy.
func (s *Schema) Fields() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a column by its request-side name.
func (s *Schema) Column(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Has reports whether name is a declared column.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// PrimaryKey returns the identity column, if one is declared.
func (s *Schema) PrimaryKey() (Column, bool) {
	for _, c := range s.columns {
		if c.Type == PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// Definition returns the declaration this schema was built from.
func (s *Schema) Definition() Definition {
	def := Definition{Table: s.table.name, Columns: make([]ColumnDef, len(s.columns))}
	for i, c := range s.columns {
		def.Columns[i] = ColumnDef{Name: c.Name.name, Type: c.Type}
	}
	return def
}

// New builds a single Schema from a Definition.
func New(def Definition) (*Schema, error) {
	table, err := newIdent(def.Table)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	if len(def.Columns) == 0 {
		return nil, fmt.Errorf("table %s: no columns declared", def.Table)
	}

	s := &Schema{
		table:   table,
		columns: make([]Column, 0, len(def.Columns)),
		index:   make(map[string]int, len(def.Columns)),
	}

	primaryKeys := 0
	for _, cd := range def.Columns {
		name, err := newIdent(cd.Name)
		if err != nil {
			return nil, fmt.Errorf("table %s: column: %w", def.Table, err)
		}
		if cd.Type < Integer || cd.Type > PrimaryKey {
			return nil, fmt.Errorf("table %s: column %s: invalid type %v", def.Table, cd.Name, cd.Type)
		}
		if _, dup := s.index[cd.Name]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %s", def.Table, cd.Name)
		}
		if cd.Type == PrimaryKey {
			primaryKeys++
		}
		s.index[cd.Name] = len(s.columns)
		s.columns = append(s.columns, Column{Name: name, Type: cd.Type})
	}
	if primaryKeys > 1 {
		return nil, fmt.Errorf("table %s: %d primary key columns (at most one allowed)", def.Table, primaryKeys)
	}

	return s, nil
}

// Registry holds one Schema per table for the lifetime of the process.
// It is built once at startup and only read afterwards, so it is safe for
// concurrent use without locking.
type Registry struct {
	schemas map[string]*Schema
}

// Build creates a Registry from definitions. Any invalid or duplicate
// definition is a programming error and fails the whole build.
func Build(defs ...Definition) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema, len(defs))}
	for _, def := range defs {
		s, err := New(def)
		if err != nil {
			return nil, fmt.Errorf("register schema: %w", err)
		}
		if _, dup := r.schemas[def.Table]; dup {
			return nil, fmt.Errorf("register schema: table %s registered twice", def.Table)
		}
		r.schemas[def.Table] = s
	}
	return r, nil
}

// MustBuild is Build for package-level initialization; it panics on error.
func MustBuild(defs ...Definition) *Registry {
	r, err := Build(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// FromRecords collects the definitions of the given record types.
func FromRecords(records ...Record) []Definition {
	defs := make([]Definition, len(records))
	for i, rec := range records {
		defs[i] = rec.Definition()
	}
	return defs
}

// Lookup returns the schema registered for table.
func (r *Registry) Lookup(table string) (*Schema, bool) {
	s, ok := r.schemas[table]
	return s, ok
}

// MustLookup panics if table is not registered. Use it only with table
// names fixed in code.
func (r *Registry) MustLookup(table string) *Schema {
	s, ok := r.schemas[table]
	if !ok {
		panic(fmt.Sprintf("schema: table %q not registered", table))
	}
	return s
}

// Tables returns registered table names, sorted.
func (r *Registry) Tables() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schemas returns registered schemas ordered by table name.
func (r *Registry) Schemas() []*Schema {
	names := r.Tables()
	out := make([]*Schema, len(names))
	for i, name := range names {
		out[i] = r.schemas[name]
	}
	return out
}
