package filter

import (
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedFragment is returned when a fragment would serialize to an
// empty or partial token.
var ErrMalformedFragment = errors.New("malformed filter fragment")

// Fragment is one constraint contributed by a single filter widget.
//
// This is a sealed interface: only ListFilter and RangeFilter implement it,
// so type switches over fragments are exhaustive.
type Fragment interface {
	// FilterName returns the facet name (e.g. "brand", "price").
	FilterName() string
	// Token returns the query-string fragment for this constraint.
	Token() string
	fragmentNode()
}

// ListFilter selects one discrete value of a list facet.
type ListFilter struct {
	Name  string
	Value string // label as displayed; normalized by Token
}

func (ListFilter) fragmentNode() {}

// FilterName implements Fragment.
func (f ListFilter) FilterName() string { return f.Name }

// Normalized returns the snake_case form of the value.
func (f ListFilter) Normalized() string { return SnakeCase(f.Value) }

// Token returns "<name>=<snake_case(value)>", or "" when either side is empty.
func (f ListFilter) Token() string {
	v := f.Normalized()
	if f.Name == "" || v == "" {
		return ""
	}
	return f.Name + "=" + url.QueryEscape(v)
}

// RangeFilter constrains a numeric facet to [From, To].
type RangeFilter struct {
	Name      string
	From      float64
	To        float64
	Precision int
}

func (RangeFilter) fragmentNode() {}

// FilterName implements Fragment.
func (f RangeFilter) FilterName() string { return f.Name }

// Token returns "<name>_gte=<from>&<name>_lte=<to>", or "" for an unnamed range.
func (f RangeFilter) Token() string {
	if f.Name == "" {
		return ""
	}
	return f.Name + "_gte=" + FormatBound(f.From, f.Precision) +
		"&" + f.Name + "_lte=" + FormatBound(f.To, f.Precision)
}

// FormatBound rounds v to precision decimal digits and formats it without
// trailing zeros. Output only contains digits, "-" and ".", so it is URL-safe.
func FormatBound(v float64, precision int) string {
	return strconv.FormatFloat(Round(v, precision), 'f', -1, 64)
}

// Round rounds v to precision decimal digits. Negative precision is treated as 0.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

// key identifies the slot a fragment occupies in an ActiveSet.
func key(f Fragment) string {
	switch f := f.(type) {
	case ListFilter:
		return "list:" + f.Name + "=" + f.Normalized()
	case RangeFilter:
		return "range:" + f.Name
	default:
		return ""
	}
}

// Fragments is an ordered fragment sequence. It is the payload of the
// filters-changed event and serializes as the list of query tokens.
type Fragments []Fragment

// Tokens returns the query token of every fragment, in order.
func (fs Fragments) Tokens() []string {
	tokens := make([]string, 0, len(fs))
	for _, f := range fs {
		tokens = append(tokens, f.Token())
	}
	return tokens
}

// Query joins the tokens with "&" for appending to a query string.
func (fs Fragments) Query() string {
	return strings.Join(fs.Tokens(), "&")
}

// MarshalJSON encodes the fragments as their wire tokens.
func (fs Fragments) MarshalJSON() ([]byte, error) {
	return json.Marshal(fs.Tokens())
}

// Change is the payload of the filter-changed event.
type Change struct {
	Fragment Fragment
	Active   bool
}

// MarshalJSON encodes the wire form {filterName, filter, isActive}.
func (c Change) MarshalJSON() ([]byte, error) {
	var name, token string
	if c.Fragment != nil {
		name = c.Fragment.FilterName()
		token = c.Fragment.Token()
	}
	return json.Marshal(struct {
		FilterName string `json:"filterName"`
		Filter     string `json:"filter"`
		IsActive   bool   `json:"isActive"`
	}{name, token, c.Active})
}

// Bounds is a closed numeric interval.
type Bounds struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// RangeSelection is the payload of the range-selected event.
type RangeSelection struct {
	FilterName string `json:"filterName"`
	Value      Bounds `json:"value"`
}
