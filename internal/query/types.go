package query

import (
	"sort"

	"github.com/roach88/notesql/internal/ir"
	"github.com/roach88/notesql/internal/schema"
)

// Operator is a comparison operator. Only the six in the whitelist are
// ever written into SQL.
type Operator string

const (
	OpEq Operator = "="
	OpNe Operator = "!="
	OpLt Operator = "<"
	OpLe Operator = "<="
	OpGt Operator = ">"
	OpGe Operator = ">="
)

// Allowed reports whether o is in the whitelist.
func (o Operator) Allowed() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// Connector joins a clause to the one after it.
type Connector string

const (
	And Connector = "AND"
	Or  Connector = "OR"
	// End terminates a filter. Only the last clause may carry it.
	End Connector = ""
)

// joins reports whether c may link two clauses.
func (c Connector) joins() bool {
	return c == And || c == Or
}

// Condition is one predicate: column, operator, literal.
//
// Semantics:
//
//	<column> <op> ?
//
// with Value bound to the placeholder at compile time.
type Condition struct {
	Column string
	Op     Operator
	Value  ir.Value
}

// Cond builds a Condition.
func Cond(column string, op Operator, value ir.Value) Condition {
	return Condition{Column: column, Op: op, Value: value}
}

// Valid reports whether the operator is whitelisted and the column exists.
// Literal/column type compatibility is not checked here; the binder does
// that at compile time.
func (c Condition) Valid(s *schema.Schema) bool {
	return c.Validate(s) == nil
}

// Validate is Valid with a typed error.
func (c Condition) Validate(s *schema.Schema) error {
	if !c.Op.Allowed() {
		return NewOperatorError(c.Column, c.Op)
	}
	if !s.Has(c.Column) {
		return NewUnknownColumnError(s.TableName().String(), c.Column)
	}
	return nil
}

// Clause pairs a Condition with the connector that follows it.
type Clause struct {
	Condition Condition
	Connector Connector
}

// Filter is a flat boolean expression evaluated left to right by the
// engine's own precedence rules (AND binds tighter than OR).
//
// An empty Filter matches every row.
type Filter []Clause

// Where starts a Filter with a single condition.
func Where(c Condition) Filter {
	return Filter{{Condition: c, Connector: End}}
}

// And returns a copy of f extended with c, joined by AND.
func (f Filter) And(c Condition) Filter {
	return f.extend(And, c)
}

// Or returns a copy of f extended with c, joined by OR.
func (f Filter) Or(c Condition) Filter {
	return f.extend(Or, c)
}

func (f Filter) extend(conn Connector, c Condition) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	if len(out) == 0 {
		return append(out, Clause{Condition: c, Connector: End})
	}
	out[len(out)-1].Connector = conn
	return append(out, Clause{Condition: c, Connector: End})
}

// Valid reports whether f is well formed against s.
func (f Filter) Valid(s *schema.Schema) bool {
	return f.Validate(s) == nil
}

// Validate checks every condition and the connector sequence: each
// non-last connector must be AND or OR, and the last must be empty.
// The first fault is returned; there is no partial acceptance.
func (f Filter) Validate(s *schema.Schema) error {
	last := len(f) - 1
	for i, cl := range f {
		if err := cl.Condition.Validate(s); err != nil {
			return err
		}
		if i < last && !cl.Connector.joins() {
			return NewMalformedFilterError("clause %d: connector %q must be AND or OR", i, string(cl.Connector))
		}
		if i == last && cl.Connector != End {
			return NewMalformedFilterError("clause %d: last connector must be empty, got %q", i, string(cl.Connector))
		}
	}
	return nil
}

// Columns returns the columns referenced by f, in clause order.
func (f Filter) Columns() []string {
	cols := make([]string, len(f))
	for i, cl := range f {
		cols[i] = cl.Condition.Column
	}
	return cols
}

// Updater assigns literals to columns on rows matched by At.
type Updater struct {
	Set map[string]ir.Value
	At  Filter
}

// Columns returns assigned columns sorted by name. This is the order in
// which SET assignments are compiled.
func (u Updater) Columns() []string {
	cols := make([]string, 0, len(u.Set))
	for c := range u.Set {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Valid reports whether u is well formed against s.
func (u Updater) Valid(s *schema.Schema) bool {
	return u.Validate(s) == nil
}

// Validate checks the filter, then that Set is non-empty, then that every
// assigned column exists.
func (u Updater) Validate(s *schema.Schema) error {
	if err := u.At.Validate(s); err != nil {
		return err
	}
	if len(u.Set) == 0 {
		return NewEmptyUpdateSetError(s.TableName().String())
	}
	for _, col := range u.Columns() {
		if !s.Has(col) {
			return NewUnknownColumnError(s.TableName().String(), col)
		}
	}
	return nil
}

// ValidateColumns checks that every requested column exists in s.
func ValidateColumns(s *schema.Schema, columns []string) error {
	for _, col := range columns {
		if !s.Has(col) {
			return NewUnknownColumnError(s.TableName().String(), col)
		}
	}
	return nil
}
