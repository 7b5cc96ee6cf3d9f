package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Op: OpInsert, Table: "notes", Outcome: OutcomeOK, Count: 1},
		{Seq: 2, Op: OpGet, Table: "notes", Outcome: "TYPE_MISMATCH"},
		{Seq: 3, Op: OpUpdate, Table: "notes", Outcome: OutcomeOK, Count: 1},
		{Seq: 4, Op: OpGet, Table: "users", Outcome: OutcomeOK},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	tests := []struct {
		name      string
		assertion Assertion
		found     bool
	}{
		{"op only", Assertion{Op: OpUpdate}, true},
		{"op and table", Assertion{Op: OpGet, Table: "users"}, true},
		{"op and outcome", Assertion{Op: OpGet, Outcome: "TYPE_MISMATCH"}, true},
		{"all three", Assertion{Op: OpGet, Table: "notes", Outcome: OutcomeOK}, false},
		{"missing op", Assertion{Op: OpDelete}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertTraceContains(trace, tt.assertion)
			if tt.found {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, AssertTraceContains, ae.Type)
			assert.Equal(t, "not found in trace", ae.Actual)
		})
	}
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{OpInsert, OpGet, OpUpdate}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{OpInsert, OpUpdate}}), "intervening steps are allowed")

	err := assertTraceOrder(trace, Assertion{Ops: []string{OpUpdate, OpInsert}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update (pos 3) should be before insert (pos 1)")

	err = assertTraceOrder(trace, Assertion{Ops: []string{OpInsert, OpDelete}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing op: delete")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Op: OpGet, Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: OpDelete, Count: 0}))

	err := assertTraceCount(trace, Assertion{Op: OpGet, Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 occurrences of get")
	assert.Contains(t, err.Error(), "2 occurrences")
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceCount,
		Expected: "1 occurrences of get",
		Actual:   "2 occurrences",
		Trace:    sampleTrace()[:2],
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: trace_count")
	assert.Contains(t, msg, "  Expected: 1 occurrences of get\n")
	assert.Contains(t, msg, "  Actual: 2 occurrences\n")
	assert.Contains(t, msg, "  [1] insert notes -> ok\n")
	assert.Contains(t, msg, "  [2] get notes -> TYPE_MISMATCH\n")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	for _, e := range sampleTrace() {
		result.AddTrace(e)
	}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Op: OpGet, Count: 2},
		{Type: AssertTraceContains, Op: OpDelete},
		{Type: "trace_exists"},
		{Type: AssertFinalState, Table: "notes", Expect: map[string]any{"a": 1}},
	}, nil)

	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "op delete")
	assert.Contains(t, errs[1], `unknown assertion type "trace_exists"`)
	assert.Contains(t, errs[2], "final_state requires database context")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
