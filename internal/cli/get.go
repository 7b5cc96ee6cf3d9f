package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/notesql/internal/ir"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	filterFlags
	Columns string
}

// GetResult is the JSON payload of get.
type GetResult struct {
	Table string        `json:"table"`
	Rows  []ir.Document `json:"rows"`
	Count int           `json:"count"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <table>",
		Short: "Read rows matching a filter",
		Long: `Read the rows of a table that match a filter.

The filter is given either in text form with --where, or in JSON wire form
with --filter. With neither, every row is returned. --columns restricts the
output to the named columns.

Examples:
  notesql get notes --where 'title = "Test"'
  notesql get notes --where 'pub_date >= 0 AND author != "anon"' --columns title,pub_date
  notesql get notes --filter '[[["title","=","Test"],""]]' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "filter in text form")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter in JSON wire form")
	cmd.Flags().StringVarP(&opts.Columns, "columns", "c", "", "comma-separated columns to return (default: all)")

	return cmd
}

func runGet(opts *GetOptions, table string, cmd *cobra.Command) error {
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

	docs, err := sess.facade.Get(context.Background(), s, filter, parseColumns(opts.Columns))
	if err != nil {
		return formatter.Fail(err)
	}

	text, err := formatRows(docs)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(GetResult{Table: table, Rows: docs, Count: len(docs)}, text)
}

// formatRows renders one JSON object per line followed by a row count.
func formatRows(docs []ir.Document) (string, error) {
	var b strings.Builder
	for _, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			return "", err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "(%d row(s))", len(docs))
	return b.String(), nil
}
