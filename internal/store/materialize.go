package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/notesql/internal/ir"
	"github.com/roach88/notesql/internal/query"
	"github.com/roach88/notesql/internal/schema"
)

// Materialize converts result rows into Documents using s to type each
// cell. Fields keep the order of the result columns.
//
// Every result column must be declared in s; otherwise ROW_DECODE_FAILURE
// is returned and no documents. NULL cells become the zero value of the
// declared type. Returns an empty slice (not nil) when there are no rows.
//
// Materialize does not close rows.
func Materialize(rows *sql.Rows, s *schema.Schema) ([]ir.Document, error) {
	table := s.TableName().String()

	names, err := rows.Columns()
	if err != nil {
		return nil, query.NewRowDecodeError(table, "", err)
	}

	cols := make([]schema.Column, len(names))
	for i, name := range names {
		col, ok := s.Column(name)
		if !ok {
			return nil, query.NewRowDecodeError(table, name, fmt.Errorf("column not in schema"))
		}
		cols[i] = col
	}

	docs := []ir.Document{}
	for rows.Next() {
		cells := newCells(cols)
		if err := rows.Scan(cells.dest...); err != nil {
			return nil, query.NewRowDecodeError(table, "", err)
		}
		docs = append(docs, cells.document(cols))
	}
	if err := rows.Err(); err != nil {
		return nil, query.NewExecutionError(table, err)
	}

	return docs, nil
}

// cells holds typed scan targets for one row.
type cells struct {
	ints  []sql.NullInt64
	reals []sql.NullFloat64
	texts []sql.NullString
	dest  []any
}

func newCells(cols []schema.Column) *cells {
	c := &cells{
		ints:  make([]sql.NullInt64, len(cols)),
		reals: make([]sql.NullFloat64, len(cols)),
		texts: make([]sql.NullString, len(cols)),
		dest:  make([]any, len(cols)),
	}
	for i, col := range cols {
		switch col.Type {
		case schema.Real:
			c.dest[i] = &c.reals[i]
		case schema.Text:
			c.dest[i] = &c.texts[i]
		default:
			c.dest[i] = &c.ints[i]
		}
	}
	return c
}

func (c *cells) document(cols []schema.Column) ir.Document {
	doc := make(ir.Document, len(cols))
	for i, col := range cols {
		var v ir.Value
		switch col.Type {
		case schema.Real:
			v = ir.Real(c.reals[i].Float64)
		case schema.Text:
			v = ir.String(c.texts[i].String)
		default:
			v = ir.Int(c.ints[i].Int64)
		}
		doc[i] = ir.Field{Name: col.Name.String(), Value: v}
	}
	return doc
}
