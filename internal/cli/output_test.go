package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/notesql/internal/query"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(map[string]string{"result": "success"}, "ignored")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.NotContains(t, buf.String(), "ignored")
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(nil, "hello"))
	assert.Equal(t, "hello\n", buf.String())
}

func TestOutputFormatter_Done(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Done(nil, "updated %d row(s)", 3))
	assert.Contains(t, buf.String(), "✓")
	assert.Contains(t, buf.String(), "updated 3 row(s)")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("UNKNOWN_COLUMN", "column is not declared", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNKNOWN_COLUMN", resp.Error.Code)
	assert.Equal(t, "column is not declared", resp.Error.Message)
}

func TestOutputFormatter_TextErrorVerboseDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("E", "bad", map[string]string{"column": "x"}))
	assert.Contains(t, buf.String(), "Error [E]: bad")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLogToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("opening %s", "db")
	assert.Empty(t, out.String())
	assert.Equal(t, "opening db\n", errOut.String())

	formatter.Verbose = false
	formatter.VerboseLog("hidden")
	assert.NotContains(t, errOut.String(), "hidden")
}

func TestFail_QueryErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exit int
		code string
	}{
		{"validation", query.NewUnknownColumnError("notes", "nope"), ExitFailure, "UNKNOWN_COLUMN"},
		{"type mismatch", query.NewTypeMismatchError("notes", "pub_date", "integer", "string"), ExitFailure, "TYPE_MISMATCH"},
		{"unknown table", query.NewUnknownTableError("widgets"), ExitFailure, "UNKNOWN_TABLE"},
		{"execution", query.NewExecutionError("notes", errors.New("locked")), ExitCommandError, "STATEMENT_EXECUTION_FAILURE"},
		{"plain", errors.New("boom"), ExitCommandError, ErrCodeCommand},
		{"exit error", NewExitError(ExitFailure, "--where and --filter are mutually exclusive"), ExitFailure, ErrCodeCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Fail(tt.err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitCommandError, "open", errors.New("denied"))
	assert.Equal(t, "open: denied", wrapped.Error())
	assert.Equal(t, "denied", errors.Unwrap(wrapped).Error())
}

func TestParseColumns(t *testing.T) {
	assert.Nil(t, parseColumns(""))
	assert.Nil(t, parseColumns("  "))
	assert.Equal(t, []string{"title", "pub_date"}, parseColumns("title, pub_date,"))
}

func TestFilterFlags(t *testing.T) {
	f, err := filterFlags{}.parse()
	require.NoError(t, err)
	assert.Empty(t, f)

	f, err = filterFlags{Where: `title = "Test"`}.parse()
	require.NoError(t, err)
	assert.Len(t, f, 1)

	f, err = filterFlags{Filter: `[[["title","=","Test"],""]]`}.parse()
	require.NoError(t, err)
	assert.Len(t, f, 1)

	_, err = filterFlags{Where: "a = 1", Filter: "[]"}.parse()
	assert.Error(t, err)
}
