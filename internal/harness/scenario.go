package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/event"
	"github.com/roach88/storefront/internal/journal"
)

// Scenario defines a storefront scenario: a sequence of user gestures run
// against the mock backend, and assertions on the resulting trace and final
// state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional YAML product catalog served by the mock backend.
	// Relative paths resolve against the scenario file. Defaults to the
	// embedded sample catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// Facets is an optional CUE facet file. Defaults to the embedded
	// declarations.
	Facets string `yaml:"facets,omitempty"`

	// PageSize overrides the default page size.
	PageSize int `yaml:"page_size,omitempty"`

	// Session is an optional fixed session id. Defaults to "test-session"
	// so golden traces are identical across runs.
	Session string `yaml:"session,omitempty"`

	// Steps are the gestures, applied in order. The initial load runs before
	// the first step.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one user gesture. Do selects the gesture; the other fields are its
// arguments.
//
//	search  text
//	toggle  facet, option, checked
//	range   facet, from, to       (drag + commit)
//	drag    facet, from, to
//	commit  facet
//	reset
//	page    index                 (0-based)
//	next, prev
//	add     product
//	inc     product
//	dec     product
//	open
//	click   target
//	update  field, value          (direct canonical state write)
//	load
type Step struct {
	Do      string   `yaml:"do"`
	Text    string   `yaml:"text,omitempty"`
	Facet   string   `yaml:"facet,omitempty"`
	Option  string   `yaml:"option,omitempty"`
	Checked *bool    `yaml:"checked,omitempty"`
	From    *float64 `yaml:"from,omitempty"`
	To      *float64 `yaml:"to,omitempty"`
	Index   *int     `yaml:"index,omitempty"`
	Product string   `yaml:"product,omitempty"`
	Target  string   `yaml:"target,omitempty"`
	Field   string   `yaml:"field,omitempty"`
	Value   any      `yaml:"value,omitempty"`

	// ExpectError is the controller error code this step must produce
	// (e.g. PRECONDITION). A step without it must not fail.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step verbs.
const (
	DoSearch = "search"
	DoToggle = "toggle"
	DoRange  = "range"
	DoDrag   = "drag"
	DoCommit = "commit"
	DoReset  = "reset"
	DoPage   = "page"
	DoNext   = "next"
	DoPrev   = "prev"
	DoAdd    = "add"
	DoInc    = "inc"
	DoDec    = "dec"
	DoOpen   = "open"
	DoClick  = "click"
	DoUpdate = "update"
	DoLoad   = "load"
)

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event with this name (and payload) was emitted
	// - "trace_order": events were first emitted in this order
	// - "trace_count": an event was emitted exactly Count times
	// - "query_count": Count queries were issued (with Status, if given)
	// - "final_state": snapshot fields equal Expect (subset match)
	Type string `yaml:"type"`

	// Event is the wire event name (trace_contains, trace_count).
	Event string `yaml:"event,omitempty"`

	// Payload is the expected event payload (trace_contains). Objects
	// match as subsets.
	Payload any `yaml:"payload,omitempty"`

	// Events is the expected order (trace_order).
	Events []string `yaml:"events,omitempty"`

	// Status restricts query_count to queries with this status.
	Status string `yaml:"status,omitempty"`

	// Count is the expected number of occurrences.
	Count int `yaml:"count,omitempty"`

	// Expect contains expected snapshot fields (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertQueryCount    = "query_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. Catalog and facet paths
// are resolved relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&scenario.Catalog, &scenario.Facets} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	if err := validateFiles(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes a scenario document with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateFiles(s *Scenario) error {
	for _, p := range []string{s.Catalog, s.Facets} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", p)
		}
	}
	return nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.PageSize < 0 {
		return fmt.Errorf("page_size must be positive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(st Step) error {
	need := func(ok bool, field string) error {
		if !ok {
			return fmt.Errorf("%s: %s is required", st.Do, field)
		}
		return nil
	}

	switch st.Do {
	case DoSearch, DoReset, DoNext, DoPrev, DoOpen, DoLoad:
		return nil
	case DoToggle:
		if err := need(st.Facet != "", "facet"); err != nil {
			return err
		}
		return need(st.Option != "", "option")
	case DoRange, DoDrag:
		if err := need(st.Facet != "", "facet"); err != nil {
			return err
		}
		if err := need(st.From != nil, "from"); err != nil {
			return err
		}
		return need(st.To != nil, "to")
	case DoCommit:
		return need(st.Facet != "", "facet")
	case DoPage:
		return need(st.Index != nil, "index")
	case DoAdd, DoInc, DoDec:
		return need(st.Product != "", "product")
	case DoClick:
		return need(st.Target != "", "target")
	case DoUpdate:
		return nil
	case "":
		return fmt.Errorf("do is required")
	default:
		return fmt.Errorf("unknown step %q", st.Do)
	}
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains, AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for %s", index, a.Type)
		}
		if !event.Name(a.Event).Valid() {
			return fmt.Errorf("assertions[%d]: unknown event %q", index, a.Event)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
		for _, name := range a.Events {
			if !event.Name(name).Valid() {
				return fmt.Errorf("assertions[%d]: unknown event %q", index, name)
			}
		}
	case AssertQueryCount:
		switch a.Status {
		case "", journal.StatusPending, journal.StatusApplied, journal.StatusStale, journal.StatusFailed:
		default:
			return fmt.Errorf("assertions[%d]: unknown query status %q", index, a.Status)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
