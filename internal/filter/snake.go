package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SnakeCase normalizes a human-readable option label into a query token value:
// NFC normalized, lowercased, whitespace runs replaced by a single "_".
//
//	SnakeCase("Home Decoration") == "home_decoration"
//
// SnakeCase is idempotent: SnakeCase(SnakeCase(s)) == SnakeCase(s).
func SnakeCase(label string) string {
	// A Caser is stateful and must not be shared between goroutines.
	lowered := cases.Lower(language.Und).String(norm.NFC.String(label))
	return strings.Join(strings.Fields(lowered), "_")
}
