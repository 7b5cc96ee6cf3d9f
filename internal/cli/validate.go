package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/notesql/internal/schema"
)

// ValidationResult holds schema validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Tables []string `json:"tables,omitempty"`
}

// SchemaErrorDetails locates a schema error in its CUE source.
type SchemaErrorDetails struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-dir>",
		Short: "Validate CUE table definitions",
		Long: `Load the *.cue files in a directory and check that they declare a valid
set of tables: legal identifiers, known column types, no duplicate tables
or columns, at most one primary key per table.

Expected shape:

  tables: notes: columns: {
      id:       "primary_key"
      title:    "text"
      pub_date: "integer"
  }`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	info, err := os.Stat(dir)
	if err != nil {
		return formatter.failWith(ExitCommandError, ErrCodeSchema, "schema directory not found", err)
	}
	if !info.IsDir() {
		return formatter.failWith(ExitCommandError, ErrCodeSchema, "not a directory: "+dir, nil)
	}

	formatter.VerboseLog("Loading CUE files from %s", dir)
	defs, err := schema.LoadCUE(dir)
	if err != nil {
		return outputSchemaError(formatter, err)
	}

	reg, err := schema.Build(defs...)
	if err != nil {
		return outputSchemaError(formatter, err)
	}

	tables := reg.Tables()
	return formatter.Done(ValidationResult{Valid: true, Tables: tables}, "%d table(s) valid", len(tables))
}

// outputSchemaError reports a schema error with its CUE position when known.
// Invalid definitions are a validation failure (exit 1).
func outputSchemaError(formatter *OutputFormatter, err error) error {
	var details any
	var loadErr *schema.LoadError
	if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
		details = SchemaErrorDetails{
			File:   loadErr.Pos.Filename(),
			Line:   loadErr.Pos.Line(),
			Column: loadErr.Pos.Column(),
		}
	}
	_ = formatter.Error(ErrCodeSchema, err.Error(), details)
	return WrapExitError(ExitFailure, "invalid schema", err)
}
