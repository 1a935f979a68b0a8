package facets

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Kind distinguishes list facets from range facets.
type Kind string

const (
	KindList  Kind = "list"
	KindRange Kind = "range"
)

// Sources a list facet may pull its options from.
const (
	SourceCategories = "categories"
	SourceBrands     = "brands"
)

// MaxPrecision bounds the number of decimal digits a range facet may keep.
const MaxPrecision = 6

// Facet is one compiled facet declaration.
type Facet struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`

	// List facets.
	Source  string   `json:"source,omitempty"`
	Options []string `json:"options,omitempty"`

	// Range facets.
	Min       float64 `json:"min,omitempty"`
	Max       float64 `json:"max,omitempty"`
	Precision int     `json:"precision,omitempty"`
}

// CompileError reports a problem in a facet declaration.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation error codes.
const (
	ErrCodeGeneric       = "E001"
	ErrCodeNoFacets      = "E201"
	ErrCodeInvalidKind   = "E202"
	ErrCodeMissingSource = "E203"
	ErrCodeInvalidRange  = "E204"
	ErrCodeInvalidPrec   = "E205"
	ErrCodeUnknownSource = "E206"
)

// ValidationError is a single semantic problem found by Validate.
type ValidationError struct {
	Facet   string `json:"facet"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Facet, e.Message)
}

// Validate checks compiled facets for semantic errors and returns all of them.
func Validate(fs []Facet) []ValidationError {
	var errs []ValidationError
	if len(fs) == 0 {
		return []ValidationError{{Facet: "facet", Code: ErrCodeNoFacets, Message: "no facets declared"}}
	}

	for _, f := range fs {
		switch f.Kind {
		case KindList:
			if f.Source == "" && len(f.Options) == 0 {
				errs = append(errs, ValidationError{Facet: f.Name, Code: ErrCodeMissingSource,
					Message: "list facet needs options or a source"})
			}
			if f.Source != "" && f.Source != SourceCategories && f.Source != SourceBrands {
				errs = append(errs, ValidationError{Facet: f.Name, Code: ErrCodeUnknownSource,
					Message: fmt.Sprintf("unknown source %q", f.Source)})
			}
		case KindRange:
			if f.Min >= f.Max {
				errs = append(errs, ValidationError{Facet: f.Name, Code: ErrCodeInvalidRange,
					Message: fmt.Sprintf("min (%v) must be below max (%v)", f.Min, f.Max)})
			}
			if f.Precision < 0 || f.Precision > MaxPrecision {
				errs = append(errs, ValidationError{Facet: f.Name, Code: ErrCodeInvalidPrec,
					Message: fmt.Sprintf("precision must be between 0 and %d", MaxPrecision)})
			}
		default:
			errs = append(errs, ValidationError{Facet: f.Name, Code: ErrCodeInvalidKind,
				Message: fmt.Sprintf("unknown kind %q", f.Kind)})
		}
	}
	return errs
}
