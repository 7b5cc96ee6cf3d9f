// Package harness runs YAML scenarios against a fresh database and checks
// the facade's behavior end to end.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	schema: path/to/cue/dir        # optional; default: built-in tables
//	op_id: test-op-001             # optional; fixed operation id
//	seed:
//	  - table: notes
//	    values: { title: Test, author: Ann, pub_date: 0 }
//	steps:
//	  - op: update
//	    table: notes
//	    where: 'title = "Test"'
//	    set: { pub_date: -2000 }
//	    expect:
//	      outcome: ok
//	      count: 1
//	assertions:
//	  - type: trace_contains
//	    op: update
//	    outcome: ok
//	  - type: final_state
//	    table: notes
//	    where: 'title = "Test"'
//	    expect: { pub_date: -2000 }
//
// # Assertion Types
//
//   - trace_contains: a step with the op (and table, outcome if given) ran
//   - trace_order: ops first appear in the given order
//   - trace_count: an op ran exactly N times
//   - final_state: exactly one row matches and carries the expected values
//
// # Deterministic Testing
//
// Every scenario gets its own in-memory SQLite database and a fixed
// operation id. The trace records the compiled statement and binds of each
// step, never timestamps or generated ids, so traces are byte-identical
// across runs and can be compared with golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/update_pub_date.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
