package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
)

// PaginationRender is one RenderPagination call.
type PaginationRender struct {
	Active int
	Total  int
}

// CartRender is one RenderCart call.
type CartRender struct {
	Lines []cart.Line
	Total int64
}

// BadgeRender is one RenderBadge call.
type BadgeRender struct {
	Quantity int
	Visible  bool
}

// RecordingView records every render call in order.
type RecordingView struct {
	mu         sync.Mutex
	calls      []string
	products   [][]catalog.Product
	pagination []PaginationRender
	carts      []CartRender
	badges     []BadgeRender
	visibility []bool
}

func (v *RecordingView) RenderProducts(products []catalog.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.products = append(v.products, products)
	v.calls = append(v.calls, fmt.Sprintf("products(%d)", len(products)))
}

func (v *RecordingView) RenderPagination(active, total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pagination = append(v.pagination, PaginationRender{Active: active, Total: total})
	v.calls = append(v.calls, fmt.Sprintf("pagination(%d/%d)", active, total))
}

func (v *RecordingView) RenderCart(lines []cart.Line, total int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.carts = append(v.carts, CartRender{Lines: lines, Total: total})
	v.calls = append(v.calls, fmt.Sprintf("cart(%d lines, %d)", len(lines), total))
}

func (v *RecordingView) RenderBadge(quantity int, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.badges = append(v.badges, BadgeRender{Quantity: quantity, Visible: ok})
	if ok {
		v.calls = append(v.calls, fmt.Sprintf("badge(%d)", quantity))
	} else {
		v.calls = append(v.calls, "badge(hidden)")
	}
}

func (v *RecordingView) RenderCartVisibility(open bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visibility = append(v.visibility, open)
	v.calls = append(v.calls, fmt.Sprintf("cart-visible(%t)", open))
}

// Calls returns a one-line description of every render, in order.
func (v *RecordingView) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

// LastProducts returns the most recently rendered product list.
func (v *RecordingView) LastProducts() ([]catalog.Product, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.products) == 0 {
		return nil, false
	}
	return v.products[len(v.products)-1], true
}

// LastPagination returns the most recent pagination render.
func (v *RecordingView) LastPagination() (PaginationRender, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.pagination) == 0 {
		return PaginationRender{}, false
	}
	return v.pagination[len(v.pagination)-1], true
}

// LastCart returns the most recent cart render.
func (v *RecordingView) LastCart() (CartRender, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.carts) == 0 {
		return CartRender{}, false
	}
	return v.carts[len(v.carts)-1], true
}

// LastBadge returns the most recent badge render.
func (v *RecordingView) LastBadge() (BadgeRender, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.badges) == 0 {
		return BadgeRender{}, false
	}
	return v.badges[len(v.badges)-1], true
}

// Visibility returns every cart visibility render.
func (v *RecordingView) Visibility() []bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]bool(nil), v.visibility...)
}

// Reset forgets every recorded call.
func (v *RecordingView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = nil
	v.products = nil
	v.pagination = nil
	v.carts = nil
	v.badges = nil
	v.visibility = nil
}
