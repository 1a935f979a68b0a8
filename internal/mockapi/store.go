package mockapi

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/filter"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Query parameters with special meaning. Everything else is a field filter.
const (
	paramPage  = "_page"
	paramLimit = "_limit"
	paramQuery = "q"
)

// defaultLimit applies when _page is given without _limit.
const defaultLimit = 10

// ErrBadQuery marks a request the store cannot evaluate.
var ErrBadQuery = errors.New("bad query")

// Store is an immutable in-memory product catalog.
type Store struct {
	products []catalog.Product
}

type catalogFile struct {
	Products []catalog.Product `yaml:"products"`
}

// Default returns the embedded sample catalog.
func Default() *Store {
	s, err := Load(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("mockapi: embedded catalog: %v", err))
	}
	return s
}

// Load decodes a YAML catalog. Unknown keys and duplicate ids are rejected.
func Load(data []byte) (*Store, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Products))
	for i, p := range f.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("product %d: missing id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("product %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
	}
	return &Store{products: f.Products}, nil
}

// Len returns the number of products in the catalog.
func (s *Store) Len() int { return len(s.products) }

// Categories returns the distinct category labels, sorted.
func (s *Store) Categories() []string {
	return s.distinct(func(p catalog.Product) string { return p.Category })
}

// Brands returns the distinct brand labels, sorted.
func (s *Store) Brands() []string {
	return s.distinct(func(p catalog.Product) string { return p.Brand })
}

func (s *Store) distinct(field func(catalog.Product) string) []string {
	out := []string{}
	for _, p := range s.products {
		v := field(p)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// Query evaluates json-server style parameters and returns the requested page
// and the total number of matches.
//
//	q=<text>             case-insensitive substring of title, brand or category
//	<field>=<value>      snake_case equality; repeated values are OR'ed
//	<field>_gte=<n>      numeric lower bound (price, rating)
//	<field>_lte=<n>      numeric upper bound
//	_page=<n>&_limit=<n> 1-based page; without _page every match is returned
//
// Filters on different fields are AND'ed.
func (s *Store) Query(values url.Values) ([]catalog.Product, int, error) {
	preds, err := predicates(values)
	if err != nil {
		return nil, 0, err
	}

	matched := []catalog.Product{}
	for _, p := range s.products {
		if matchesAll(p, preds) {
			matched = append(matched, p)
		}
	}

	total := len(matched)
	page, limit, paged, err := paging(values)
	if err != nil {
		return nil, 0, err
	}
	if !paged {
		return matched, total, nil
	}

	start := (page - 1) * limit
	if start >= total {
		return []catalog.Product{}, total, nil
	}
	end := min(start+limit, total)
	return matched[start:end], total, nil
}

type predicate func(catalog.Product) bool

func matchesAll(p catalog.Product, preds []predicate) bool {
	for _, pred := range preds {
		if !pred(p) {
			return false
		}
	}
	return true
}

func predicates(values url.Values) ([]predicate, error) {
	var preds []predicate

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		vals := values[key]
		switch key {
		case paramPage, paramLimit:
			continue
		case paramQuery:
			if text := strings.ToLower(strings.TrimSpace(vals[0])); text != "" {
				preds = append(preds, search(text))
			}
			continue
		}

		if field, ok := strings.CutSuffix(key, "_gte"); ok {
			pred, err := bound(field, vals[0], func(v, b float64) bool { return v >= b })
			if err != nil {
				return nil, err
			}
			preds = append(preds, pred)
			continue
		}
		if field, ok := strings.CutSuffix(key, "_lte"); ok {
			pred, err := bound(field, vals[0], func(v, b float64) bool { return v <= b })
			if err != nil {
				return nil, err
			}
			preds = append(preds, pred)
			continue
		}

		get, ok := textField(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter field %q", ErrBadQuery, key)
		}
		want := make([]string, len(vals))
		for i, v := range vals {
			want[i] = filter.SnakeCase(v)
		}
		preds = append(preds, func(p catalog.Product) bool {
			return slices.Contains(want, filter.SnakeCase(get(p)))
		})
	}
	return preds, nil
}

func search(text string) predicate {
	return func(p catalog.Product) bool {
		for _, v := range []string{p.Title, p.Brand, p.Category} {
			if strings.Contains(strings.ToLower(v), text) {
				return true
			}
		}
		return false
	}
}

func bound(field, raw string, cmp func(v, b float64) bool) (predicate, error) {
	get, ok := numericField(field)
	if !ok {
		return nil, fmt.Errorf("%w: unknown numeric field %q", ErrBadQuery, field)
	}
	b, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(b) || math.IsInf(b, 0) {
		return nil, fmt.Errorf("%w: %s bound %q is not a number", ErrBadQuery, field, raw)
	}
	return func(p catalog.Product) bool { return cmp(get(p), b) }, nil
}

func textField(name string) (func(catalog.Product) string, bool) {
	switch name {
	case "id":
		return func(p catalog.Product) string { return p.ID }, true
	case "title":
		return func(p catalog.Product) string { return p.Title }, true
	case "category":
		return func(p catalog.Product) string { return p.Category }, true
	case "brand":
		return func(p catalog.Product) string { return p.Brand }, true
	}
	return nil, false
}

func numericField(name string) (func(catalog.Product) float64, bool) {
	switch name {
	case "price":
		return func(p catalog.Product) float64 { return float64(p.Price) }, true
	case "rating":
		return func(p catalog.Product) float64 { return p.Rating }, true
	}
	return nil, false
}

func paging(values url.Values) (page, limit int, paged bool, err error) {
	rawPage, hasPage := values[paramPage]
	if !hasPage {
		return 0, 0, false, nil
	}
	page, err = strconv.Atoi(rawPage[0])
	if err != nil || page < 1 {
		return 0, 0, false, fmt.Errorf("%w: %s must be a positive integer", ErrBadQuery, paramPage)
	}

	limit = defaultLimit
	if rawLimit, ok := values[paramLimit]; ok {
		limit, err = strconv.Atoi(rawLimit[0])
		if err != nil || limit < 1 {
			return 0, 0, false, fmt.Errorf("%w: %s must be a positive integer", ErrBadQuery, paramLimit)
		}
	}
	return page, limit, true, nil
}
