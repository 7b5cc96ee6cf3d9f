package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/notesql/internal/query"
	"github.com/roach88/notesql/internal/store"
)

// WriteResult is the JSON payload of update, insert, and delete.
type WriteResult struct {
	Table string `json:"table"`
	store.Result
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	filterFlags
	Set     string
	Updater string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <table>",
		Short: "Assign column values on rows matching a filter",
		Long: `Assign column values on the rows of a table that match a filter.

Give the assignments with --set as a JSON object and the filter with
--where or --filter, or give the whole updater in JSON wire form with
--updater. An update that matches no rows succeeds with 0 rows affected.

Examples:
  notesql update notes --set '{"pub_date": -2000}' --where 'title = "Test"'
  notesql update notes --updater '{"set":{"pub_date":-2000},"at":[[["title","=","Test"],""]]}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Set, "set", "", "assignments as a JSON object")
	cmd.Flags().StringVar(&opts.Updater, "updater", "", "updater in JSON wire form")
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "filter in text form")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter in JSON wire form")

	return cmd
}

func (opts *UpdateOptions) updater() (query.Updater, error) {
	if opts.Updater != "" {
		if opts.Set != "" || opts.Where != "" || opts.Filter != "" {
			return query.Updater{}, NewExitError(ExitFailure, "--updater cannot be combined with --set, --where, or --filter")
		}
		return query.ParseUpdater([]byte(opts.Updater))
	}
	if opts.Set == "" {
		return query.Updater{}, NewExitError(ExitFailure, "one of --set or --updater is required")
	}

	set, err := query.ParseValues([]byte(opts.Set))
	if err != nil {
		return query.Updater{}, err
	}
	at, err := opts.filterFlags.parse()
	if err != nil {
		return query.Updater{}, err
	}
	return query.Updater{Set: set, At: at}, nil
}

func runUpdate(opts *UpdateOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	u, err := opts.updater()
	if err != nil {
		return formatter.Fail(err)
	}

	sess, err := openSession(opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	s, err := sess.lookup(table)
	if err != nil {
		return formatter.Fail(err)
	}

	res, err := sess.facade.Update(context.Background(), s, u)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Done(WriteResult{Table: table, Result: res}, "updated %d row(s) in %s", res.RowsAffected, table)
}

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	Values string
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <table>",
		Short: "Insert one row",
		Long: `Insert one row. Columns not named in --values take their defaults.

Example:
  notesql insert notes --values '{"title": "Test", "author": "Ann", "pub_date": 0}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Values, "values", "", "column values as a JSON object (required)")
	_ = cmd.MarkFlagRequired("values")

	return cmd
}

func runInsert(opts *InsertOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	values, err := query.ParseValues([]byte(opts.Values))
	if err != nil {
		return formatter.Fail(err)
	}

	sess, err := openSession(opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	s, err := sess.lookup(table)
	if err != nil {
		return formatter.Fail(err)
	}

	res, err := sess.facade.Insert(context.Background(), s, values)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Done(WriteResult{Table: table, Result: res}, "inserted %d row(s) into %s", res.RowsAffected, table)
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	filterFlags
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete rows matching a filter",
		Long: `Delete the rows of a table that match a filter.

A filter is required unless allow_full_table_delete is set in config.

Example:
  notesql delete notes --where 'id = 3'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "filter in text form")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter in JSON wire form")

	return cmd
}

func runDelete(opts *DeleteOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	filter, err := opts.filterFlags.parse()
	if err != nil {
		return formatter.Fail(err)
	}

	sess, err := openSession(opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	s, err := sess.lookup(table)
	if err != nil {
		return formatter.Fail(err)
	}

	res, err := sess.facade.Delete(context.Background(), s, filter)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Done(WriteResult{Table: table, Result: res}, "deleted %d row(s) from %s", res.RowsAffected, table)
}
