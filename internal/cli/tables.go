package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/notesql/internal/schema"
)

// ColumnInfo describes one column in command output.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableInfo describes one registered table in command output.
type TableInfo struct {
	Table   string       `json:"table"`
	Columns []ColumnInfo `json:"columns"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List registered tables and their columns",
		Long: `List the tables notesql knows about, with column names and types.

Tables come from --schema-dir when set, otherwise from the built-in
notes and users record types. The database is not opened.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}

	return cmd
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return formatter.failWith(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return formatter.failWith(ExitCommandError, ErrCodeSchema, "failed to load schemas", err)
	}

	tables := describeTables(reg)
	return formatter.Success(tables, formatTables(tables))
}

func describeTables(reg *schema.Registry) []TableInfo {
	schemas := reg.Schemas()
	tables := make([]TableInfo, len(schemas))
	for i, s := range schemas {
		fields := s.Fields()
		cols := make([]ColumnInfo, len(fields))
		for j, c := range fields {
			cols[j] = ColumnInfo{Name: c.Name.String(), Type: c.Type.String()}
		}
		tables[i] = TableInfo{Table: s.TableName().String(), Columns: cols}
	}
	return tables
}

func formatTables(tables []TableInfo) string {
	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Table)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "\n  %-16s %s", c.Name, c.Type)
		}
	}
	return b.String()
}
