package query

import (
	"errors"
	"fmt"
)

// Code categorizes errors raised while validating, compiling, or executing
// a dynamic query.
type Code string

const (
	// ErrCodeUnknownColumn indicates a condition or assignment names a column
	// absent from the schema.
	ErrCodeUnknownColumn Code = "UNKNOWN_COLUMN"

	// ErrCodeUnknownTable indicates a table name with no registered schema.
	ErrCodeUnknownTable Code = "UNKNOWN_TABLE"

	// ErrCodeOperatorNotAllowed indicates an operator outside the whitelist.
	ErrCodeOperatorNotAllowed Code = "OPERATOR_NOT_ALLOWED"

	// ErrCodeMalformedFilter indicates connector sequencing or shape errors.
	ErrCodeMalformedFilter Code = "MALFORMED_FILTER"

	// ErrCodeMalformedLiteral indicates a wire literal that is not a scalar.
	ErrCodeMalformedLiteral Code = "MALFORMED_LITERAL"

	// ErrCodeEmptyUpdateSet indicates an Updater with no assignments.
	ErrCodeEmptyUpdateSet Code = "EMPTY_UPDATE_SET"

	// ErrCodeTypeMismatch indicates a literal that cannot be coerced to its
	// column's declared type.
	ErrCodeTypeMismatch Code = "TYPE_MISMATCH"

	// ErrCodeConnectionAcquisition indicates the pool could not supply a
	// connection.
	ErrCodeConnectionAcquisition Code = "CONNECTION_ACQUISITION_FAILURE"

	// ErrCodeStatementExecution indicates the engine rejected or failed the
	// statement.
	ErrCodeStatementExecution Code = "STATEMENT_EXECUTION_FAILURE"

	// ErrCodeRowDecode indicates a result column the schema does not describe.
	ErrCodeRowDecode Code = "ROW_DECODE_FAILURE"
)

// Error is the single error type surfaced by query validation, compilation,
// and the store facade. Callers map Code to transport responses.
type Error struct {
	Code    Code
	Message string

	// Table and Column identify the offending schema element, when known.
	Table  string
	Column string

	// Err is the underlying cause (driver error, decode error).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Table != "" && e.Column != "" {
		msg = fmt.Sprintf("%s (table=%s, column=%s)", msg, e.Table, e.Column)
	} else if e.Table != "" {
		msg = fmt.Sprintf("%s (table=%s)", msg, e.Table)
	} else if e.Column != "" {
		msg = fmt.Sprintf("%s (column=%s)", msg, e.Column)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the Code from err. Uses errors.As to handle wrapped errors.
func CodeOf(err error) (Code, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsValidation reports whether err was detected from in-memory structures
// alone, before any connection was touched.
func IsValidation(err error) bool {
	c, ok := CodeOf(err)
	if !ok {
		return false
	}
	switch c {
	case ErrCodeUnknownColumn, ErrCodeUnknownTable, ErrCodeOperatorNotAllowed,
		ErrCodeMalformedFilter, ErrCodeMalformedLiteral, ErrCodeEmptyUpdateSet,
		ErrCodeTypeMismatch:
		return true
	default:
		return false
	}
}

// NewUnknownColumnError creates an Error for a column absent from the schema.
func NewUnknownColumnError(table, column string) *Error {
	return &Error{
		Code:    ErrCodeUnknownColumn,
		Message: "column is not declared in the schema",
		Table:   table,
		Column:  column,
	}
}

// NewUnknownTableError creates an Error for an unregistered table.
func NewUnknownTableError(table string) *Error {
	return &Error{
		Code:    ErrCodeUnknownTable,
		Message: "no schema registered for table",
		Table:   table,
	}
}

// NewOperatorError creates an Error for an operator outside the whitelist.
func NewOperatorError(column string, op Operator) *Error {
	return &Error{
		Code:    ErrCodeOperatorNotAllowed,
		Message: fmt.Sprintf("operator %q is not allowed", string(op)),
		Column:  column,
	}
}

// NewMalformedFilterError creates an Error for connector or shape faults.
func NewMalformedFilterError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeMalformedFilter,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewMalformedLiteralError wraps a literal decoding failure.
func NewMalformedLiteralError(column string, err error) *Error {
	return &Error{
		Code:    ErrCodeMalformedLiteral,
		Message: "literal must be a string, number, or boolean",
		Column:  column,
		Err:     err,
	}
}

// NewEmptyUpdateSetError creates an Error for an Updater with nothing to set.
func NewEmptyUpdateSetError(table string) *Error {
	return &Error{
		Code:    ErrCodeEmptyUpdateSet,
		Message: "update set must contain at least one assignment",
		Table:   table,
	}
}

// NewTypeMismatchError creates an Error for a literal that does not fit its
// column's declared type.
func NewTypeMismatchError(table, column, want, got string) *Error {
	return &Error{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("cannot bind %s literal to %s column", got, want),
		Table:   table,
		Column:  column,
	}
}

// NewConnectionError wraps a pool acquisition failure.
func NewConnectionError(err error) *Error {
	return &Error{
		Code:    ErrCodeConnectionAcquisition,
		Message: "could not acquire a database connection",
		Err:     err,
	}
}

// NewExecutionError wraps an engine failure for the given table.
func NewExecutionError(table string, err error) *Error {
	return &Error{
		Code:    ErrCodeStatementExecution,
		Message: "statement execution failed",
		Table:   table,
		Err:     err,
	}
}

// NewRowDecodeError reports a result column the schema does not describe,
// or a cell that could not be scanned into its declared type.
func NewRowDecodeError(table, column string, err error) *Error {
	return &Error{
		Code:    ErrCodeRowDecode,
		Message: "result row does not match schema",
		Table:   table,
		Column:  column,
		Err:     err,
	}
}
