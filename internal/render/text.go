// Package render draws storefront state as plain text for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/filter"
)

// Text is a View that writes each render call to w.
//
// Safe for concurrent use; the controller calls it from its loop goroutine
// while the CLI may print the sidebar from another.
type Text struct {
	mu      sync.Mutex
	w       io.Writer
	printer *message.Printer
}

// NewText creates a text view writing to w. Prices use English digit
// grouping.
func NewText(w io.Writer) *Text {
	return &Text{w: w, printer: message.NewPrinter(language.English)}
}

// Price formats whole currency units with digit grouping ("$85,000").
func (t *Text) Price(v int64) string {
	return t.printer.Sprintf("$%d", v)
}

// RenderProducts prints the product grid as a table.
func (t *Text) RenderProducts(products []catalog.Product) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(products) == 0 {
		fmt.Fprintln(t.w, "No products found.")
		return
	}

	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tBRAND\tCATEGORY\tPRICE\tRATING")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\n",
			p.ID, p.Title, p.Brand, p.Category, t.Price(p.Price), p.Rating)
	}
	tw.Flush()
}

// RenderPagination prints the page selector, bracketing the active page.
func (t *Text) RenderPagination(active, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, Pagination(active, total))
}

// RenderCart prints the cart lines and total.
func (t *Text) RenderCart(lines []cart.Line, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(lines) == 0 {
		fmt.Fprintln(t.w, "Cart is empty.")
		return
	}

	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tUNIT\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			l.ProductID, l.Title, l.Quantity, t.Price(l.UnitPrice), t.Price(l.Subtotal()))
	}
	fmt.Fprintf(tw, "\t\t\tTOTAL\t%s\n", t.Price(total))
	tw.Flush()
}

// RenderBadge prints the cart quantity badge. A hidden badge prints nothing.
func (t *Text) RenderBadge(quantity int, ok bool) {
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "cart (%d)\n", quantity)
}

// RenderCartVisibility prints a marker when the cart panel opens or closes.
func (t *Text) RenderCartVisibility(open bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if open {
		fmt.Fprintln(t.w, "[cart opened]")
	} else {
		fmt.Fprintln(t.w, "[cart closed]")
	}
}

// RenderSidebar prints every facet in order: list options with their checked
// state, range sliders with their committed bounds.
func (t *Text) RenderSidebar(s *filter.Sidebar) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, name := range s.Order() {
		if w, ok := s.List(name); ok {
			checked := make(map[string]bool)
			for _, label := range w.Selected() {
				checked[label] = true
			}
			opts := make([]string, 0, len(w.Options()))
			for _, label := range w.Options() {
				box := "[ ]"
				if checked[label] {
					box = "[x]"
				}
				opts = append(opts, box+" "+label)
			}
			fmt.Fprintf(t.w, "%s: %s\n", name, strings.Join(opts, "  "))
			continue
		}
		if w, ok := s.Range(name); ok {
			v, full := w.Value(), w.Full()
			fmt.Fprintf(t.w, "%s: %s..%s (of %s..%s)\n", name,
				filter.FormatBound(v.From, w.Precision()), filter.FormatBound(v.To, w.Precision()),
				filter.FormatBound(full.From, w.Precision()), filter.FormatBound(full.To, w.Precision()))
		}
	}
}

// Pagination formats a page selector: "< 1 [2] 3 >". Zero pages render a
// single disabled indicator.
func Pagination(active, total int) string {
	if total <= 0 {
		return "(1)"
	}
	var b strings.Builder
	b.WriteString("<")
	for i := 0; i < total; i++ {
		if i == active {
			fmt.Fprintf(&b, " [%d]", i+1)
		} else {
			fmt.Fprintf(&b, " %d", i+1)
		}
	}
	b.WriteString(" >")
	return b.String()
}
