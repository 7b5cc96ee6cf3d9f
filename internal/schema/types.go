package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnType is the native storage type a column is declared as.
type ColumnType int

const (
	Integer ColumnType = iota + 1
	Real
	Text
	// PrimaryKey binds and decodes as Integer but marks the identity column.
	PrimaryKey
)

// String returns the spelling used in CUE schema files.
func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Text:
		return "text"
	case PrimaryKey:
		return "primary_key"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// SQLType returns the column definition fragment used by CREATE TABLE.
func (t ColumnType) SQLType() string {
	switch t {
	case Integer:
		return "INTEGER NOT NULL DEFAULT 0"
	case Real:
		return "REAL NOT NULL DEFAULT 0"
	case Text:
		return "TEXT NOT NULL DEFAULT ''"
	case PrimaryKey:
		return "INTEGER PRIMARY KEY"
	default:
		return ""
	}
}

// IsInteger reports whether values of this type bind as int64.
func (t ColumnType) IsInteger() bool {
	return t == Integer || t == PrimaryKey
}

// ParseColumnType parses the CUE spelling of a column type.
func ParseColumnType(s string) (ColumnType, error) {
	switch s {
	case "integer":
		return Integer, nil
	case "real":
		return Real, nil
	case "text":
		return Text, nil
	case "primary_key":
		return PrimaryKey, nil
	default:
		return 0, fmt.Errorf("unknown column type %q (want integer, real, text, or primary_key)", s)
	}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Ident is a table or column name that came from a registered Schema.
//
// Its field is unexported, so code outside this package can only obtain an
// Ident from a Schema. The SQL compiler writes Idents into statement text and
// nothing else, which keeps request-supplied strings out of identifiers.
type Ident struct {
	name string
}

// String returns the identifier text.
func (i Ident) String() string {
	return i.name
}

// IsZero reports whether i was never assigned.
func (i Ident) IsZero() bool {
	return i.name == ""
}

// reservedWords are keywords reserved by at least one supported engine.
// Identifiers are written unquoted, so none of these may name a table or
// column.
var reservedWords = map[string]bool{
	"add": true, "all": true, "alter": true, "and": true, "as": true,
	"asc": true, "between": true, "by": true, "case": true, "cast": true,
	"check": true, "collate": true, "column": true, "constraint": true,
	"create": true, "cross": true, "current_date": true, "current_time": true,
	"current_timestamp": true, "current_user": true, "default": true,
	"delete": true, "desc": true, "distinct": true, "drop": true, "else": true,
	"end": true, "exists": true, "false": true, "fetch": true, "for": true,
	"foreign": true, "from": true, "full": true, "grant": true, "group": true,
	"having": true, "in": true, "index": true, "inner": true, "insert": true,
	"intersect": true, "into": true, "is": true, "join": true, "key": true,
	"left": true, "like": true, "limit": true, "natural": true, "not": true,
	"null": true, "offset": true, "on": true, "or": true, "order": true,
	"outer": true, "primary": true, "references": true, "right": true,
	"select": true, "set": true, "table": true, "then": true, "to": true,
	"true": true, "union": true, "unique": true, "update": true, "user": true,
	"using": true, "values": true, "when": true, "where": true, "with": true,
}

func newIdent(name string) (Ident, error) {
	if !identPattern.MatchString(name) {
		return Ident{}, fmt.Errorf("invalid identifier %q", name)
	}
	if reservedWords[strings.ToLower(name)] {
		return Ident{}, fmt.Errorf("identifier %q is a reserved SQL word", name)
	}
	return Ident{name: name}, nil
}

// Column is one declared column of a Schema.
type Column struct {
	Name Ident
	Type ColumnType
}

// ColumnDef declares a column before registration.
type ColumnDef struct {
	Name string
	Type ColumnType
}

// Definition is the registration contract a record type provides: a table
// name and its columns in a stable order.
type Definition struct {
	Table   string
	Columns []ColumnDef
}

// Record is implemented by types that describe their own table.
type Record interface {
	Definition() Definition
}
