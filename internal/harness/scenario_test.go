package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "catalog.yaml", "products: []\n")
	path := writeFile(t, dir, "s.yaml", `
name: relative
description: "paths resolve next to the scenario"
catalog: catalog.yaml
steps:
  - do: load
assertions:
  - type: query_count
    count: 2
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, dir+"/catalog.yaml", s.Catalog)
	assert.Empty(t, s.Facets)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s.yaml", `
name: missing
description: "catalog does not exist"
catalog: nope.yaml
steps:
  - do: load
assertions:
  - type: query_count
    count: 1
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: a\ndescription: b\nstep: []\n",
			want: "field step not found",
		},
		{
			name: "missing name",
			yaml: "description: b\nsteps: [{do: load}]\nassertions: [{type: query_count}]\n",
			want: "name is required",
		},
		{
			name: "missing steps",
			yaml: "name: a\ndescription: b\nassertions: [{type: query_count}]\n",
			want: "steps list is required",
		},
		{
			name: "unknown verb",
			yaml: "name: a\ndescription: b\nsteps: [{do: fly}]\nassertions: [{type: query_count}]\n",
			want: `unknown step "fly"`,
		},
		{
			name: "toggle without option",
			yaml: "name: a\ndescription: b\nsteps: [{do: toggle, facet: brand}]\nassertions: [{type: query_count}]\n",
			want: "toggle: option is required",
		},
		{
			name: "range without bounds",
			yaml: "name: a\ndescription: b\nsteps: [{do: range, facet: price, from: 1}]\nassertions: [{type: query_count}]\n",
			want: "range: to is required",
		},
		{
			name: "page without index",
			yaml: "name: a\ndescription: b\nsteps: [{do: page}]\nassertions: [{type: query_count}]\n",
			want: "page: index is required",
		},
		{
			name: "unknown event",
			yaml: "name: a\ndescription: b\nsteps: [{do: load}]\nassertions: [{type: trace_count, event: cart-opened}]\n",
			want: `unknown event "cart-opened"`,
		},
		{
			name: "unknown status",
			yaml: "name: a\ndescription: b\nsteps: [{do: load}]\nassertions: [{type: query_count, status: done}]\n",
			want: `unknown query status "done"`,
		},
		{
			name: "final state without expect",
			yaml: "name: a\ndescription: b\nsteps: [{do: load}]\nassertions: [{type: final_state}]\n",
			want: "expect is required",
		},
		{
			name: "unknown assertion",
			yaml: "name: a\ndescription: b\nsteps: [{do: load}]\nassertions: [{type: eventually}]\n",
			want: `unknown assertion type "eventually"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_PageIndexZero(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: zero
description: "index 0 is a valid page"
steps:
  - do: page
    index: 0
  - do: toggle
    facet: brand
    option: Acme
    checked: false
assertions:
  - type: query_count
    count: 1
`))
	require.NoError(t, err)
	require.NotNil(t, s.Steps[0].Index)
	assert.Equal(t, 0, *s.Steps[0].Index)
	require.NotNil(t, s.Steps[1].Checked)
	assert.False(t, *s.Steps[1].Checked)
}
