package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadError is an error found while reading CUE schema files.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadCUE reads every *.cue file in dir as one CUE instance and returns the
// table definitions it declares, in declaration order.
//
// Expected shape:
//
//	tables: notes: columns: {
//		id:       "primary_key"
//		title:    "text"
//		pub_date: "integer"
//	}
func LoadCUE(dir string) ([]Definition, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("schema directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("scan %s: %v", dir, err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Message: "no CUE instances loaded"}
	}
	if inst := instances[0]; inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	value := ctx.BuildInstance(instances[0])
	return definitionsFromValue(value)
}

// ParseCUE compiles a single CUE source and returns its table definitions.
func ParseCUE(filename, src string) ([]Definition, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src, cue.Filename(filename))
	return definitionsFromValue(value)
}

func definitionsFromValue(v cue.Value) ([]Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tables := v.LookupPath(cue.ParsePath("tables"))
	if !tables.Exists() {
		return nil, &LoadError{Message: "tables is required", Pos: v.Pos()}
	}

	iter, err := tables.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []Definition
	for iter.Next() {
		def, err := parseTable(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseTable(name string, v cue.Value) (Definition, error) {
	def := Definition{Table: name}

	columns := v.LookupPath(cue.ParsePath("columns"))
	if !columns.Exists() {
		return def, &LoadError{Message: fmt.Sprintf("table %s: columns is required", name), Pos: v.Pos()}
	}

	iter, err := columns.Fields()
	if err != nil {
		return def, formatCUEError(err)
	}
	for iter.Next() {
		colName := iter.Selector().Unquoted()
		typeStr, err := iter.Value().String()
		if err != nil {
			return def, &LoadError{
				Message: fmt.Sprintf("table %s: column %s: type must be a string", name, colName),
				Pos:     iter.Value().Pos(),
			}
		}
		ct, err := ParseColumnType(typeStr)
		if err != nil {
			return def, &LoadError{
				Message: fmt.Sprintf("table %s: column %s: %v", name, colName, err),
				Pos:     iter.Value().Pos(),
			}
		}
		def.Columns = append(def.Columns, ColumnDef{Name: colName, Type: ct})
	}
	return def, nil
}

// formatCUEError keeps the first CUE error together with its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
