package cart

import (
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/catalog"
)

// ErrNoSuchLine is returned when a line operation names a product that is not
// in the cart. It marks a broken precondition in the caller.
var ErrNoSuchLine = errors.New("no such cart line")

// Line is one product in the cart. Quantity is always at least 1.
type Line struct {
	ProductID string   `json:"productId"`
	Title     string   `json:"title"`
	Images    []string `json:"images,omitempty"`
	UnitPrice int64    `json:"unitPrice"`
	Quantity  int      `json:"quantity"`
}

// Subtotal returns UnitPrice × Quantity.
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart is the ordered list of cart lines.
// The zero value is an empty cart ready for use.
type Cart struct {
	lines []Line
}

// Add puts one unit of p in the cart, creating the line on first add.
func (c *Cart) Add(p catalog.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Title:     p.Title,
		Images:    images,
		UnitPrice: p.Price,
		Quantity:  1,
	})
}

// Increment adds one unit to an existing line.
func (c *Cart) Increment(id string) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("increment %q: %w", id, ErrNoSuchLine)
	}
	c.lines[i].Quantity++
	return nil
}

// Decrement removes one unit from an existing line. A line at quantity 1 is
// removed entirely.
func (c *Cart) Decrement(id string) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("decrement %q: %w", id, ErrNoSuchLine)
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return nil
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// Lines returns a deep copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		l.Images = append([]string(nil), l.Images...)
		out[i] = l
	}
	return out
}

// Line returns the line for a product id.
func (c *Cart) Line(id string) (Line, bool) {
	i := c.index(id)
	if i < 0 {
		return Line{}, false
	}
	return c.lines[i], true
}

// Total returns the sum of every line subtotal. It is computed on each call.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// TotalQuantity returns the sum of line quantities. ok is false when the cart
// has no lines, so a badge can hide instead of showing 0.
func (c *Cart) TotalQuantity() (n int, ok bool) {
	if len(c.lines) == 0 {
		return 0, false
	}
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n, true
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) index(id string) int {
	for i, l := range c.lines {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}
