package querysql

import (
	"github.com/roach88/notesql/internal/ir"
	"github.com/roach88/notesql/internal/query"
	"github.com/roach88/notesql/internal/schema"
)

// bindValue coerces v to the native Go value for col's declared type.
//
//	Integer, PrimaryKey  <- ir.Int
//	Real                 <- ir.Real, ir.Int (widened)
//	Text                 <- ir.String
//
// Booleans never bind; there is no boolean column type.
func bindValue(s *schema.Schema, col schema.Column, v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.Int:
		if col.Type.IsInteger() {
			return int64(val), nil
		}
		if col.Type == schema.Real {
			return float64(val), nil
		}
	case ir.Real:
		if col.Type == schema.Real {
			return float64(val), nil
		}
	case ir.String:
		if col.Type == schema.Text {
			return string(val), nil
		}
	}
	return nil, query.NewTypeMismatchError(s.TableName().String(), col.Name.String(), col.Type.String(), kindName(v))
}

func kindName(v ir.Value) string {
	if v == nil {
		return "null"
	}
	return v.Kind().String()
}
