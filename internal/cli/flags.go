package cli

import (
	"strings"

	"github.com/roach88/notesql/internal/query"
)

// filterFlags are shared by get, update, and delete.
type filterFlags struct {
	Where  string // text syntax: title = "Test" AND pub_date > 0
	Filter string // JSON wire form
}

// parse returns the filter named by --where or --filter. Neither means the
// empty (match-all) filter; both is an input error.
func (ff filterFlags) parse() (query.Filter, error) {
	switch {
	case ff.Where != "" && ff.Filter != "":
		return nil, NewExitError(ExitFailure, "--where and --filter are mutually exclusive")
	case ff.Filter != "":
		return query.ParseFilter([]byte(ff.Filter))
	default:
		return query.ParseText(ff.Where)
	}
}

// parseColumns splits a comma-separated --columns value.
func parseColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cols = append(cols, p)
		}
	}
	return cols
}
