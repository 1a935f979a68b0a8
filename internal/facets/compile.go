package facets

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
)

//go:embed default.cue
var defaultSource []byte

// Default returns the built-in facet declarations.
func Default() ([]Facet, error) {
	return Parse(defaultSource, "default.cue")
}

// Parse compiles facets from CUE source text.
func Parse(src []byte, filename string) ([]Facet, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(v)
}

// LoadDir builds the CUE package in dir and compiles its facets.
func LoadDir(dir string) ([]Facet, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("facets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, fmt.Errorf("scan facets directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(v)
}

// Compile extracts every field of the top-level "facet" struct, in
// declaration order.
func Compile(v cue.Value) ([]Facet, error) {
	facetsVal := v.LookupPath(cue.ParsePath("facet"))
	if !facetsVal.Exists() {
		return nil, &CompileError{Field: "facet", Message: "no facet struct declared", Pos: v.Pos()}
	}

	iter, err := facetsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []Facet
	for iter.Next() {
		f, err := CompileFacet(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, nil
}

// CompileFacet parses a single facet declaration.
func CompileFacet(name string, v cue.Value) (*Facet, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	f := &Facet{Name: name, Label: name}

	kind, err := requiredString(v, name, "kind")
	if err != nil {
		return nil, err
	}
	f.Kind = Kind(kind)

	if label, ok, err := optionalString(v, "label"); err != nil {
		return nil, err
	} else if ok {
		f.Label = label
	}

	switch f.Kind {
	case KindList:
		if src, ok, err := optionalString(v, "source"); err != nil {
			return nil, err
		} else if ok {
			f.Source = src
		}
		optsVal := v.LookupPath(cue.ParsePath("options"))
		if optsVal.Exists() {
			list, err := optsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for list.Next() {
				s, err := list.Value().String()
				if err != nil {
					return nil, &CompileError{Field: name + ".options", Message: "options must be strings", Pos: list.Value().Pos()}
				}
				f.Options = append(f.Options, s)
			}
		}

	case KindRange:
		if f.Min, err = requiredNumber(v, name, "min"); err != nil {
			return nil, err
		}
		if f.Max, err = requiredNumber(v, name, "max"); err != nil {
			return nil, err
		}
		precVal := v.LookupPath(cue.ParsePath("precision"))
		if precVal.Exists() {
			p, err := precVal.Int64()
			if err != nil {
				return nil, &CompileError{Field: name + ".precision", Message: "precision must be an integer", Pos: precVal.Pos()}
			}
			f.Precision = int(p)
		}

	default:
		return nil, &CompileError{Field: name + ".kind", Message: fmt.Sprintf("unknown kind %q (want list or range)", kind), Pos: v.Pos()}
	}

	return f, nil
}

func requiredString(v cue.Value, facet, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: facet + "." + field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: facet + "." + field, Message: field + " must be a string", Pos: fv.Pos()}
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

func requiredNumber(v cue.Value, facet, field string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{Field: facet + "." + field, Message: field + " is required", Pos: v.Pos()}
	}
	n, err := fv.Float64()
	if err != nil {
		return 0, &CompileError{Field: facet + "." + field, Message: field + " must be a number", Pos: fv.Pos()}
	}
	return n, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
