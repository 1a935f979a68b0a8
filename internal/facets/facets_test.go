package facets

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	fs, err := Default()
	require.NoError(t, err)
	require.Len(t, fs, 4)

	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"price", "category", "brand", "rating"}, names)

	price := fs[0]
	assert.Equal(t, KindRange, price.Kind)
	assert.Equal(t, "Price", price.Label)
	assert.Equal(t, 0.0, price.Min)
	assert.Equal(t, 85000.0, price.Max)
	assert.Equal(t, 0, price.Precision)

	assert.Equal(t, KindList, fs[1].Kind)
	assert.Equal(t, SourceCategories, fs[1].Source)
	assert.Equal(t, SourceBrands, fs[2].Source)

	rating := fs[3]
	assert.Equal(t, 5.0, rating.Max)
	assert.Equal(t, 2, rating.Precision)

	assert.Empty(t, Validate(fs))
}

func TestCompileFacetInlineOptions(t *testing.T) {
	v := cuecontext.New().CompileString(`
		facet: color: {
			kind: "list"
			options: ["Deep Red", "Blue"]
		}
	`)
	require.NoError(t, v.Err())

	f, err := CompileFacet("color", v.LookupPath(cue.ParsePath("facet.color")))
	require.NoError(t, err)

	assert.Equal(t, "color", f.Label, "label defaults to name")
	assert.Equal(t, []string{"Deep Red", "Blue"}, f.Options)
	assert.Empty(t, f.Source)
}

func TestCompileFacetMissingKind(t *testing.T) {
	v := cuecontext.New().CompileString(`facet: x: { label: "X" }`)
	require.NoError(t, v.Err())

	_, err := CompileFacet("x", v.LookupPath(cue.ParsePath("facet.x")))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "x.kind", ce.Field)
	assert.Contains(t, err.Error(), "required")
}

func TestCompileFacetUnknownKind(t *testing.T) {
	_, err := Parse([]byte(`facet: x: { kind: "tree" }`), "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "tree"`)
}

func TestCompileFacetRangeNeedsBounds(t *testing.T) {
	_, err := Parse([]byte(`facet: price: { kind: "range", min: 0 }`), "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price.max")
}

func TestParseNoFacetStruct(t *testing.T) {
	_, err := Parse([]byte(`other: 1`), "empty.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no facet struct")
}

func TestParseSyntaxErrorHasPosition(t *testing.T) {
	_, err := Parse([]byte("facet: {\n  price: {kind: }\n"), "broken.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		facet Facet
		code  string
	}{
		{"list without options", Facet{Name: "c", Kind: KindList}, ErrCodeMissingSource},
		{"unknown source", Facet{Name: "c", Kind: KindList, Source: "colors"}, ErrCodeUnknownSource},
		{"empty range", Facet{Name: "p", Kind: KindRange, Min: 5, Max: 5}, ErrCodeInvalidRange},
		{"negative precision", Facet{Name: "p", Kind: KindRange, Max: 1, Precision: -1}, ErrCodeInvalidPrec},
		{"unknown kind", Facet{Name: "z", Kind: "tree"}, ErrCodeInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate([]Facet{tt.facet})
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.facet.Name, errs[0].Facet)
		})
	}

	errs := Validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNoFacets, errs[0].Code)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	src := `package shop

facet: {
	brand: {kind: "list", source: "brands"}
	weight: {kind: "range", min: 0, max: 10.5, precision: 1}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "facets.cue"), []byte(src), 0o644))

	fs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "brand", fs[0].Name)
	assert.Equal(t, "weight", fs[1].Name)
	assert.Equal(t, 10.5, fs[1].Max)
	assert.Equal(t, 1, fs[1].Precision)
}

func TestLoadDirErrors(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	_, err = LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files")
}
