// Package query holds the canonical query state of the storefront and its
// serialization to the backend's resource query.
//
// State is owned by the controller and mutated only through Apply and
// SetFilters, which enforce the page reset rules:
//
//   - changing the search text or the filters resets Page to 1
//   - changing Page alone leaves Search and Filters untouched
//
// Encode is the only place fragments are turned into wire tokens for the
// product query.
package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/filter"
)

// Query parameter names understood by the backend.
const (
	ParamPage   = "_page"
	ParamLimit  = "_limit"
	ParamSearch = "q"
)

// DefaultPageSize is the number of products per page.
const DefaultPageSize = 9

var (
	// ErrUnknownField is returned by Apply for a name the state does not hold.
	ErrUnknownField = errors.New("unknown query field")
	// ErrConstantField is returned by Apply for the page size.
	ErrConstantField = errors.New("query field is constant")
	// ErrInvalidValue is returned when a value has the wrong type or range.
	ErrInvalidValue = errors.New("invalid query value")
)

// State is the canonical description of what the user wants to see.
type State struct {
	Page     int
	PageSize int
	Search   string
	Filters  filter.Fragments
}

// New returns the initial state: page 1, empty search, no filters.
func New(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{Page: 1, PageSize: pageSize, Filters: filter.Fragments{}}
}

// Apply writes value under name. Only strings and numbers are accepted.
// Writing the search text resets Page to 1. Returns whether the state changed.
func (s *State) Apply(name string, value any) (changed bool, err error) {
	switch name {
	case ParamPage:
		page, err := toInt(value)
		if err != nil {
			return false, fmt.Errorf("%s: %w", name, err)
		}
		if page < 1 {
			return false, fmt.Errorf("%s: page %d: %w", name, page, ErrInvalidValue)
		}
		if page == s.Page {
			return false, nil
		}
		s.Page = page
		return true, nil

	case ParamSearch:
		text, err := toString(value)
		if err != nil {
			return false, fmt.Errorf("%s: %w", name, err)
		}
		text = strings.TrimSpace(text)
		changed := text != s.Search || s.Page != 1
		s.Search = text
		s.Page = 1
		return changed, nil

	case ParamLimit:
		return false, fmt.Errorf("%s: %w", name, ErrConstantField)

	default:
		return false, fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
}

// Touch marks name as changed without writing a value. Naming the search
// text resets Page to 1; naming the page changes nothing.
func (s *State) Touch(name string) error {
	switch name {
	case ParamSearch:
		s.Page = 1
		return nil
	case ParamPage:
		return nil
	case ParamLimit:
		return fmt.Errorf("%s: %w", name, ErrConstantField)
	default:
		return fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
}

// SetPage moves to page n. Values below 1 are ignored.
func (s *State) SetPage(n int) {
	if n >= 1 {
		s.Page = n
	}
}

// IsValue reports whether v is a string or a number, the only kinds Apply
// writes.
func IsValue(v any) bool {
	switch v.(type) {
	case string, int, int32, int64, float64:
		return true
	default:
		return false
	}
}

// SetFilters replaces the active fragments and resets Page to 1.
func (s *State) SetFilters(fs filter.Fragments) {
	s.Filters = append(filter.Fragments{}, fs...)
	s.Page = 1
}

// Reset clears search and filters and returns to page 1.
func (s *State) Reset() {
	s.Search = ""
	s.Filters = filter.Fragments{}
	s.Page = 1
}

// Encode serializes the state into a query string. Empty and zero fields are
// omitted; filter tokens are appended verbatim in order.
func (s State) Encode() string {
	var parts []string
	if s.Page > 0 {
		parts = append(parts, ParamPage+"="+strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		parts = append(parts, ParamLimit+"="+strconv.Itoa(s.PageSize))
	}
	if s.Search != "" {
		parts = append(parts, ParamSearch+"="+url.QueryEscape(s.Search))
	}
	for _, token := range s.Filters.Tokens() {
		if token != "" {
			parts = append(parts, token)
		}
	}
	return strings.Join(parts, "&")
}

// TotalPages returns the page count for totalCount results at this page size.
func (s State) TotalPages(totalCount int) int {
	return catalog.TotalPages(totalCount, s.PageSize)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number: %w", n, ErrInvalidValue)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%q: %w", n, ErrInvalidValue)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%T: %w", v, ErrInvalidValue)
	}
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%T: %w", v, ErrInvalidValue)
	}
}
