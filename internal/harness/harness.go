package harness

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/roach88/notesql/internal/ir"
	"github.com/roach88/notesql/internal/logging"
	"github.com/roach88/notesql/internal/model"
	"github.com/roach88/notesql/internal/query"
	"github.com/roach88/notesql/internal/querysql"
	"github.com/roach88/notesql/internal/schema"
	"github.com/roach88/notesql/internal/store"
	"github.com/roach88/notesql/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenario steps through the same Facade the CLI uses, and records
// the statement the compiler produced for each one.
type Harness struct {
	reg      *schema.Registry
	facade   *store.Facade
	compiler *querysql.Compiler
	seq      int64
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh in-memory database
//  2. Build the registry and create its tables
//  3. Insert seed rows
//  4. Execute steps with expect validation
//  5. Evaluate assertions
//
// A returned error means the scenario could not run at all. Step and
// assertion failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	db, err := store.Open(store.DefaultDriver, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer db.Close()

	reg, err := loadRegistry(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	h := &Harness{
		reg: reg,
		facade: db.Facade(
			store.WithLogger(logging.Discard()),
			store.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.OpID)),
		),
		compiler: querysql.NewCompiler(db.Dialect()),
	}

	ctx := context.Background()
	if err := h.facade.EnsureTables(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := h.executeSeed(ctx, scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed: %w", err)
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{
		Registry: reg,
		Facade:   h.facade,
		Ctx:      ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func loadRegistry(dir string) (*schema.Registry, error) {
	if dir == "" {
		return schema.Build(model.Definitions()...)
	}
	defs, err := schema.LoadCUE(dir)
	if err != nil {
		return nil, err
	}
	return schema.Build(defs...)
}

// executeSeed inserts seed rows. Seed rows must be accepted.
func (h *Harness) executeSeed(ctx context.Context, seed []SeedRow) error {
	for i, row := range seed {
		s, ok := h.reg.Lookup(row.Table)
		if !ok {
			return fmt.Errorf("seed[%d]: unknown table %s", i, row.Table)
		}
		values, err := convertValues(row.Values)
		if err != nil {
			return fmt.Errorf("seed[%d]: %w", i, err)
		}
		if _, err := h.facade.Insert(ctx, s, values); err != nil {
			return fmt.Errorf("seed[%d]: %w", i, err)
		}
	}
	return nil
}

// executeSteps runs every step, records it in the trace, and checks its
// expect clause. A step failing its expectation does not stop the run.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		event, err := h.execute(ctx, step)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.AddTrace(event)

		for _, msg := range checkExpect(step, event) {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: %s", i, step.Op, step.Table, msg))
		}
	}
	return nil
}

func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	h.seq++
	event := TraceEvent{Seq: h.seq, Op: step.Op, Table: step.Table}

	s, ok := h.reg.Lookup(step.Table)
	if !ok {
		event.Outcome = string(query.ErrCodeUnknownTable)
		return event, nil
	}

	filter, err := query.ParseText(step.Where)
	if err != nil {
		return withOutcome(event, err)
	}
	values, err := convertValues(step.Set)
	if err != nil {
		return event, err
	}

	switch step.Op {
	case OpGet:
		event.Statement, event.Binds, _ = h.compiler.CompileSelect(s, filter, step.Columns)
		docs, err := h.facade.Get(ctx, s, filter, step.Columns)
		if err != nil {
			return withOutcome(event, err)
		}
		event.Rows = docs
		event.Count = int64(len(docs))

	case OpUpdate:
		u := query.Updater{Set: values, At: filter}
		event.Statement, event.Binds, _ = h.compiler.CompileUpdate(s, u)
		res, err := h.facade.Update(ctx, s, u)
		if err != nil {
			return withOutcome(event, err)
		}
		event.Count = res.RowsAffected

	case OpInsert:
		event.Statement, event.Binds, _ = h.compiler.CompileInsert(s, values)
		res, err := h.facade.Insert(ctx, s, values)
		if err != nil {
			return withOutcome(event, err)
		}
		event.Count = res.RowsAffected

	case OpDelete:
		event.Statement, event.Binds, _ = h.compiler.CompileDelete(s, filter)
		res, err := h.facade.Delete(ctx, s, filter)
		if err != nil {
			return withOutcome(event, err)
		}
		event.Count = res.RowsAffected

	default:
		return event, fmt.Errorf("unknown op %q", step.Op)
	}

	event.Outcome = OutcomeOK
	return event, nil
}

// withOutcome records a query error as the step outcome. Rejected requests
// never produce a statement, so none is traced for them.
func withOutcome(event TraceEvent, err error) (TraceEvent, error) {
	code, ok := query.CodeOf(err)
	if !ok {
		return event, err
	}
	event.Outcome = string(code)
	if query.IsValidation(err) {
		event.Statement = ""
		event.Binds = nil
	}
	return event, nil
}

// checkExpect compares a traced step with its expect clause and returns
// one message per mismatch. A step without a clause must succeed.
func checkExpect(step Step, event TraceEvent) []string {
	want := OutcomeOK
	if step.Expect != nil {
		want = step.Expect.Outcome
	}
	if event.Outcome != want {
		return []string{fmt.Sprintf("expected outcome %s, got %s", want, event.Outcome)}
	}
	if step.Expect == nil {
		return nil
	}

	var msgs []string
	if c := step.Expect.Count; c != nil && *c != event.Count {
		msgs = append(msgs, fmt.Sprintf("expected count %d, got %d", *c, event.Count))
	}
	if step.Expect.Rows != nil {
		if len(step.Expect.Rows) != len(event.Rows) {
			msgs = append(msgs, fmt.Sprintf("expected %d row(s), got %d", len(step.Expect.Rows), len(event.Rows)))
			return msgs
		}
		for i, want := range step.Expect.Rows {
			if msg := matchDocument(event.Rows[i], want); msg != "" {
				msgs = append(msgs, fmt.Sprintf("row %d: %s", i, msg))
			}
		}
	}
	return msgs
}

// matchDocument checks that doc has every expected column with an equal
// value. Extra columns in doc are ignored. Returns "" on a match.
func matchDocument(doc ir.Document, expected map[string]any) string {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		actual, ok := doc.Get(name)
		if !ok {
			return fmt.Sprintf("column %q not present in %v", name, doc.Names())
		}
		if !valueMatches(expected[name], actual) {
			return fmt.Sprintf("column %q = %v, expected %v", name, ir.Native(actual), expected[name])
		}
	}
	return ""
}

// valueMatches compares a YAML scalar with a materialized value. Int and
// Real compare numerically so a real column can be expected as 3.
func valueMatches(expected any, actual ir.Value) bool {
	want, err := ir.FromAny(expected)
	if err != nil {
		return false
	}
	if want == actual {
		return true
	}
	wf, wok := numeric(want)
	af, aok := numeric(actual)
	return wok && aok && wf == af
}

func numeric(v ir.Value) (float64, bool) {
	switch n := v.(type) {
	case ir.Int:
		return float64(n), true
	case ir.Real:
		if math.IsNaN(float64(n)) {
			return 0, false
		}
		return float64(n), true
	default:
		return 0, false
	}
}

// convertValues converts YAML scalars to literals.
func convertValues(raw map[string]any) (map[string]ir.Value, error) {
	if raw == nil {
		return nil, nil
	}
	out := make(map[string]ir.Value, len(raw))
	for name, v := range raw {
		val, err := ir.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
