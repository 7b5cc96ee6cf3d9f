package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := NewUnknownColumnError("notes", "author")
	assert.Equal(t, "UNKNOWN_COLUMN: column is not declared in the schema (table=notes, column=author)", err.Error())

	err = NewExecutionError("notes", errors.New("disk I/O error"))
	assert.Equal(t, "STATEMENT_EXECUTION_FAILURE: statement execution failed (table=notes): disk I/O error", err.Error())
}

func TestIsCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("get notes: %w", NewTypeMismatchError("notes", "pub_date", "integer", "string"))
	assert.True(t, IsCode(err, ErrCodeTypeMismatch))
	assert.False(t, IsCode(err, ErrCodeUnknownColumn))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeTypeMismatch))
}

func TestIsValidation(t *testing.T) {
	validation := []error{
		NewUnknownColumnError("t", "c"),
		NewUnknownTableError("t"),
		NewOperatorError("c", "LIKE"),
		NewMalformedFilterError("bad"),
		NewMalformedLiteralError("c", errors.New("null")),
		NewEmptyUpdateSetError("t"),
		NewTypeMismatchError("t", "c", "integer", "string"),
	}
	for _, err := range validation {
		assert.True(t, IsValidation(err), "%v", err)
	}

	runtime := []error{
		NewConnectionError(errors.New("pool closed")),
		NewExecutionError("t", errors.New("constraint")),
		NewRowDecodeError("t", "c", nil),
		errors.New("plain"),
	}
	for _, err := range runtime {
		assert.False(t, IsValidation(err), "%v", err)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewConnectionError(cause)
	assert.ErrorIs(t, err, cause)
}
