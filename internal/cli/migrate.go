package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// MigrateResult reports the tables ensured by migrate.
type MigrateResult struct {
	Tables []string `json:"tables"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create registered tables that do not exist yet",
		Long: `Create every registered table that is missing from the database.
Existing tables are left untouched; no columns are added or dropped.

Examples:
  notesql migrate --db ./notes.db
  notesql migrate --driver postgres --db "postgres://localhost/notes?sslmode=disable"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}

	return cmd
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.facade.EnsureTables(context.Background(), sess.reg); err != nil {
		return formatter.Fail(err)
	}

	tables := sess.reg.Tables()
	return formatter.Done(MigrateResult{Tables: tables}, "ensured %d table(s)", len(tables))
}
