package harness

import "github.com/roach88/notesql/internal/ir"

// Outcome of a step that completed without error.
const OutcomeOK = "ok"

// TraceEvent records one facade call made by a scenario.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Op    string `json:"op"` // get, update, insert, or delete
	Table string `json:"table"`

	// Statement and Binds are what the compiler produced for the request.
	// Both are empty when the request was rejected during validation.
	Statement string `json:"statement,omitempty"`
	Binds     []any  `json:"binds,omitempty"`

	// Outcome is OutcomeOK or the query error code.
	Outcome string `json:"outcome"`

	// Count is rows returned for get, rows affected otherwise.
	Count int64 `json:"count"`

	// Rows holds the documents returned by get.
	Rows []ir.Document `json:"rows,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every step in execution order, seed rows excluded.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
