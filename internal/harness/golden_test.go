package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/notesql/internal/ir"
)

// TestScenarios runs every scenario under testdata/scenarios and compares
// its trace with testdata/golden/<name>.golden.
//
// To regenerate golden files:
//
//	go test ./internal/harness -run TestScenarios -update
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := filepath.Base(path)
		name = name[:len(name)-len(filepath.Ext(name))]

		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenarioWithBasePath(path, "testdata")
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "file name and scenario name should match")
			assert.NotEmpty(t, scenario.OpID, "scenario should pin op_id")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenarioWithBasePath("testdata/scenarios/update_pub_date.yaml", "testdata")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	// AssertGolden snapshots the trace without an op_id.
	require.NoError(t, AssertGolden(t, "update_pub_date_result", result))
}

func TestTraceSnapshot_Canonical(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "demo",
		OpID:         "op-1",
		Trace: []TraceEvent{
			{
				Seq:       1,
				Op:        OpGet,
				Table:     "notes",
				Statement: "SELECT title FROM notes WHERE pub_date >= ?",
				Binds:     []any{int64(0)},
				Outcome:   OutcomeOK,
				Count:     1,
				Rows:      []ir.Document{{{Name: "title", Value: ir.String("Test")}}},
			},
			{Seq: 2, Op: OpDelete, Table: "notes", Outcome: "MALFORMED_FILTER"},
		},
	}

	got, err := snapshot.Canonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"op_id":"op-1","scenario_name":"demo","trace":[`+
			`{"binds":[0],"count":1,"op":"get","outcome":"ok","rows":[{"title":"Test"}],"seq":1,"statement":"SELECT title FROM notes WHERE pub_date >= ?","table":"notes"},`+
			`{"count":0,"op":"delete","outcome":"MALFORMED_FILTER","seq":2,"table":"notes"}]}`,
		string(got))
}
