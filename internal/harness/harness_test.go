package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/search_reset.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Final, second.Final)
}

func TestRun_UnexpectedStepError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "a failing step without expect_error",
		Steps:       []Step{{Do: DoInc, Product: "p1"}},
		Assertions:  []Assertion{{Type: AssertQueryCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
	assert.Contains(t, result.Errors[0], "PRECONDITION")
}

func TestRun_MissingExpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing",
		Description: "expect_error on a step that succeeds",
		Steps:       []Step{{Do: DoAdd, Product: "p1", ExpectError: "PRECONDITION"}},
		Assertions:  []Assertion{{Type: AssertTraceCount, Event: "add-to-cart", Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected error PRECONDITION, got none")
}

func TestRun_InvalidInputCode(t *testing.T) {
	checked := true
	scenario := &Scenario{
		Name:        "invalid_input",
		Description: "toggling an option the sidebar does not offer",
		Steps: []Step{
			{Do: DoToggle, Facet: "brand", Option: "Wayne", Checked: &checked, ExpectError: "INVALID_INPUT"},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Event: "filter-changed", Count: 0},
			{Type: AssertQueryCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UpdateStep(t *testing.T) {
	scenario := &Scenario{
		Name:        "update",
		Description: "direct canonical writes",
		PageSize:    5,
		Steps: []Step{
			{Do: DoUpdate, Field: "_page", Value: 3},
			{Do: DoUpdate, Field: "_limit", Value: 10, ExpectError: "INVALID_UPDATE"},
		},
		Assertions: []Assertion{
			{Type: AssertQueryCount, Status: "applied", Count: 2},
			{Type: AssertFinalState, Expect: map[string]any{
				"page":        3,
				"page_size":   5,
				"query":       "_page=3&_limit=5",
				"products":    []any{"p11", "p12", "p13", "p14", "p15"},
				"active_page": 2,
				"total_pages": 4,
			}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CustomCatalogAndFacets(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: custom
description: "custom catalog and facets"
steps:
  - do: toggle
    facet: colour
    option: Deep Red
    expect_error: NETWORK_FAILURE
assertions:
  - type: trace_contains
    event: filters-changed
    payload: ["colour=deep_red"]
`))
	require.NoError(t, err)

	// colour is not a field the mock backend filters on.
	dir := t.TempDir()
	scenario.Catalog = writeFile(t, dir, "catalog.yaml", "products:\n  - id: a\n    title: A\n    price: 1\n")
	scenario.Facets = writeFile(t, dir, "facets.cue", `
facet: colour: {
	kind:    "list"
	options: ["Deep Red", "Blue"]
}
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, TypeQuery, last.Type)
	assert.Equal(t, "failed", last.Status)
	assert.Contains(t, last.Error, "400")
	assert.Equal(t, []string{"a"}, result.Final.Products)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
