package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/notesql/internal/query"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Request rejected (unknown column, bad filter, type mismatch)
	ExitCommandError = 2 // Command error (bad config, database unreachable, statement failed)
)

// CLI error codes that are not query.Code values.
const (
	ErrCodeCommand = "COMMAND_ERROR"
	ErrCodeConfig  = "CONFIG_ERROR"
	ErrCodeSchema  = "SCHEMA_ERROR"
	ErrCodeInput   = "INVALID_INPUT"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // query.Code or one of the ErrCode constants
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

var (
	checkMark = color.New(color.FgGreen, color.Bold).Sprint("✓")
	crossMark = color.New(color.FgRed, color.Bold).Sprint("✗")
)

// Success outputs data in JSON mode, or text in text mode.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, text)
	return nil
}

// Done outputs data in JSON mode, or a check-marked message in text mode.
func (f *OutputFormatter) Done(data any, format string, args ...any) error {
	return f.Success(data, checkMark+" "+fmt.Sprintf(format, args...))
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "%s Error [%s]: %s\n", crossMark, code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// ErrorDetails identifies the schema element an error refers to.
type ErrorDetails struct {
	Table  string `json:"table,omitempty"`
	Column string `json:"column,omitempty"`
	Cause  string `json:"cause,omitempty"`
}

// Fail reports err and returns the ExitError the command should return.
// Rejected requests exit with ExitFailure; everything else with
// ExitCommandError.
func (f *OutputFormatter) Fail(err error) error {
	var qe *query.Error
	if errors.As(err, &qe) {
		details := ErrorDetails{Table: qe.Table, Column: qe.Column}
		if qe.Err != nil {
			details.Cause = qe.Err.Error()
		}
		_ = f.Error(string(qe.Code), qe.Message, details)

		exit := ExitCommandError
		if query.IsValidation(err) {
			exit = ExitFailure
		}
		return WrapExitError(exit, string(qe.Code), err)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = f.Error(ErrCodeCommand, exitErr.Error(), nil)
		return exitErr
	}

	_ = f.Error(ErrCodeCommand, err.Error(), nil)
	return WrapExitError(ExitCommandError, "command failed", err)
}

// failWith reports a CLI-level error with an explicit code.
func (f *OutputFormatter) failWith(exit int, code, message string, err error) error {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, msg, nil)
	return WrapExitError(exit, message, err)
}
