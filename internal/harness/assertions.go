package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			switch ev.Type {
			case TypeEvent:
				fmt.Fprintf(&buf, "  [%d] %s %v\n", ev.Seq, ev.Name, ev.Payload)
			case TypeQuery:
				fmt.Fprintf(&buf, "  [%d] query %s (%s)\n", ev.Seq, ev.Query, ev.Status)
			}
		}
	}

	return buf.String()
}

// assertTraceContains checks if the trace contains an event with the given
// name whose payload matches (subset semantics for objects).
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	want := normalize(a.Payload)
	for _, ev := range trace {
		if ev.Type != TypeEvent || ev.Name != a.Event {
			continue
		}
		if a.Payload == nil || matchValue(ev.Payload, want) {
			return nil
		}
	}

	expected := "event " + a.Event
	if a.Payload != nil {
		expected += fmt.Sprintf(" with payload %v", a.Payload)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrences of the events appear in
// the given order. Events don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range trace {
		if ev.Type != TypeEvent {
			continue
		}
		if _, seen := positions[ev.Name]; !seen {
			positions[ev.Name] = i + 1 // 1-indexed for readability
		}
	}

	for _, name := range a.Events {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all events present: %v", a.Events),
				Actual:   fmt.Sprintf("missing event: %s", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Events); i++ {
		prev, curr := a.Events[i-1], a.Events[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order: %v", a.Events),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks the event appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Type == TypeEvent && ev.Name == a.Event {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Event),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertQueryCount checks how many queries were issued, optionally only those
// that ended with Status.
func assertQueryCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Type == TypeQuery && (a.Status == "" || ev.Status == a.Status) {
			count++
		}
	}
	if count != a.Count {
		what := "queries"
		if a.Status != "" {
			what = a.Status + " queries"
		}
		return &AssertionError{
			Type:     AssertQueryCount,
			Expected: fmt.Sprintf("%d %s", a.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState compares the final snapshot against the expected fields.
// Both sides go through JSON so YAML integers compare equal to JSON numbers.
func assertFinalState(result *Result, a Assertion) error {
	actual, ok := normalize(result.Final).(map[string]any)
	if !ok {
		return fmt.Errorf("final_state: snapshot is not an object")
	}

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		got, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("snapshot has no field %q", key),
			}
		}
		want := normalize(a.Expect[key])
		if !reflect.DeepEqual(got, want) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v", key, want),
				Actual:   fmt.Sprintf("field %q = %v", key, got),
			}
		}
	}
	return nil
}

// normalize round-trips v through JSON. Values that do not encode are
// returned unchanged.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// matchValue reports whether actual matches expected. Objects match as
// subsets; everything else must be equal.
func matchValue(actual, expected any) bool {
	exp, ok := expected.(map[string]any)
	if !ok {
		return reflect.DeepEqual(actual, expected)
	}
	act, ok := actual.(map[string]any)
	if !ok {
		return false
	}
	for key, want := range exp {
		got, exists := act[key]
		if !exists || !matchValue(got, want) {
			return false
		}
	}
	return true
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertQueryCount:
			err = assertQueryCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
