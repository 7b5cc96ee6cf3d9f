package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios seed tables, run a sequence of facade calls, and assert on the
// resulting trace and final table contents.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is a directory of *.cue table definitions, relative to the
	// base path. Empty means the built-in notes and users tables.
	Schema string `yaml:"schema,omitempty"`

	// Seed rows are inserted before the steps run and are not traced.
	Seed []SeedRow `yaml:"seed,omitempty"`

	// Steps are the facade calls under test, with expected outcomes.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`

	// OpID is an optional fixed operation id for deterministic logs.
	// If empty, defaults to "test-op-default".
	OpID string `yaml:"op_id,omitempty"`
}

// SeedRow is one row inserted before the scenario's steps.
type SeedRow struct {
	Table  string         `yaml:"table"`
	Values map[string]any `yaml:"values"`
}

// Step is one facade call.
type Step struct {
	// Op is get, update, insert, or delete.
	Op string `yaml:"op"`

	Table string `yaml:"table"`

	// Where is a filter in text form: title = "Test" AND pub_date > 0.
	// Empty matches every row.
	Where string `yaml:"where,omitempty"`

	// Set holds assignments for update and column values for insert.
	Set map[string]any `yaml:"set,omitempty"`

	// Columns restricts the projection of get.
	Columns []string `yaml:"columns,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step must succeed and nothing else is checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is "ok" or a query error code such as TYPE_MISMATCH.
	Outcome string `yaml:"outcome"`

	// Count is rows returned for get, rows affected otherwise.
	Count *int64 `yaml:"count,omitempty"`

	// Rows are the expected get results in order. Each row is a subset
	// match: only the listed columns are compared.
	Rows []map[string]any `yaml:"rows,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a step with Op (and Table, Outcome if set) ran
	// - "trace_order": steps with the given ops ran in this order
	// - "trace_count": Op ran exactly Count times
	// - "final_state": exactly one row of Table matches Where and has Expect
	Type string `yaml:"type"`

	// Op names the facade call (used by trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Table narrows trace_contains and names the table for final_state.
	Table string `yaml:"table,omitempty"`

	// Outcome narrows trace_contains.
	Outcome string `yaml:"outcome,omitempty"`

	// Ops is the expected op order (used by trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Where is a text filter (used by final_state).
	Where string `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match - only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Step ops.
const (
	OpGet    = "get"
	OpUpdate = "update"
	OpInsert = "insert"
	OpDelete = "delete"
)

var validOps = []string{OpGet, OpUpdate, OpInsert, OpDelete}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the schema directory relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) && basePath != "" {
		scenario.Schema = filepath.Join(basePath, scenario.Schema)
	}
	if scenario.Schema != "" {
		if _, err := os.Stat(scenario.Schema); err != nil {
			return nil, fmt.Errorf("invalid scenario: schema directory not found: %s", scenario.Schema)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Schema paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, row := range s.Seed {
		if row.Table == "" {
			return fmt.Errorf("seed[%d]: table is required", i)
		}
		if len(row.Values) == 0 {
			return fmt.Errorf("seed[%d]: values is required", i)
		}
	}

	for i, step := range s.Steps {
		if !slices.Contains(validOps, step.Op) {
			return fmt.Errorf("steps[%d]: op must be one of %v, got %q", i, validOps, step.Op)
		}
		if step.Table == "" {
			return fmt.Errorf("steps[%d]: table is required", i)
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("steps[%d].expect: outcome is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
