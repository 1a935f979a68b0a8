package filter

import (
	"strings"

	"github.com/roach88/storefront/internal/event"
)

// SearchBox holds the free-text search input.
type SearchBox struct {
	value string

	Changed *event.Emitter[string]
}

// NewSearchBox creates an empty search box.
func NewSearchBox() *SearchBox {
	return &SearchBox{Changed: event.New[string](event.SearchChanged)}
}

// Input records raw user input and emits search-changed with the trimmed text
// when it differs from the current value.
func (b *SearchBox) Input(text string) {
	v := strings.TrimSpace(text)
	if v == b.value {
		return
	}
	b.value = v
	b.Changed.Emit(v)
}

// Value returns the current trimmed search text.
func (b *SearchBox) Value() string { return b.value }

// Reset clears the input silently.
func (b *SearchBox) Reset() { b.value = "" }

// Sync sets the value silently, for mirroring a search text written
// elsewhere.
func (b *SearchBox) Sync(text string) { b.value = strings.TrimSpace(text) }
