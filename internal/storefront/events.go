package storefront

import (
	"context"
	"fmt"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
)

// Event is a unit of work for the controller loop: a user gesture or a fetch
// resolution.
//
// This is a sealed interface; only types in this package implement it.
type Event interface {
	apply(ctx context.Context, c *Controller) error
}

// Load issues the initial product query (or a manual refresh), refreshing
// both the product list and the pagination total.
type Load struct{}

// Search types text into the search box.
type Search struct {
	Text string
}

// Toggle checks or unchecks an option of a list facet.
type Toggle struct {
	Facet   string
	Option  string
	Checked bool
}

// Drag moves a range slider without settling it.
type Drag struct {
	Facet    string
	From, To float64
}

// Commit settles a range slider gesture.
type Commit struct {
	Facet string
}

// SelectRange is a Drag immediately followed by a Commit.
type SelectRange struct {
	Facet    string
	From, To float64
}

// ResetFilters presses the sidebar's clear-all button.
type ResetFilters struct{}

// SelectPage clicks the page control with the given 0-based index.
type SelectPage struct {
	Index int
}

// NextPage clicks the forward arrow of the pagination.
type NextPage struct{}

// PrevPage clicks the back arrow of the pagination.
type PrevPage struct{}

// AddToCart clicks the add-to-cart button of a displayed product.
type AddToCart struct {
	ProductID string
}

// CartControl clicks the +/- control of a cart line.
type CartControl struct {
	ProductID string
	Op        cart.Op
}

// OpenCart clicks the cart button.
type OpenCart struct{}

// ClickCart clicks somewhere while the cart panel is shown.
type ClickCart struct {
	Target cart.Target
}

// Set writes a canonical state field directly, as Update does.
type Set struct {
	Name  string
	Value any

	done chan error
}

// fetchResult is the resolution of a product query.
type fetchResult struct {
	req  *request
	page catalog.ResultPage
	err  error
}

func (Load) apply(ctx context.Context, c *Controller) error {
	c.renderCart()
	c.view.RenderCartVisibility(c.panel.IsOpen())
	c.issue(ctx, "load", true)
	return nil
}

func (e Search) apply(_ context.Context, c *Controller) error {
	c.search.Input(e.Text)
	return nil
}

func (e Toggle) apply(_ context.Context, c *Controller) error {
	w, ok := c.sidebar.List(e.Facet)
	if !ok {
		return invalidInput("no list facet %q", e.Facet)
	}
	if err := w.Toggle(e.Option, e.Checked); err != nil {
		return &Error{Code: ErrCodeInvalidInput, Message: "toggle", Err: err}
	}
	return nil
}

func (e Drag) apply(_ context.Context, c *Controller) error {
	w, ok := c.sidebar.Range(e.Facet)
	if !ok {
		return invalidInput("no range facet %q", e.Facet)
	}
	if err := w.Drag(e.From, e.To); err != nil {
		return &Error{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("drag %s", e.Facet), Err: err}
	}
	return nil
}

func (e Commit) apply(_ context.Context, c *Controller) error {
	w, ok := c.sidebar.Range(e.Facet)
	if !ok {
		return invalidInput("no range facet %q", e.Facet)
	}
	if !w.Commit() {
		c.logger.Debug("range commit suppressed", "facet", e.Facet, "value", w.Value())
	}
	return nil
}

func (e SelectRange) apply(ctx context.Context, c *Controller) error {
	if err := (Drag{Facet: e.Facet, From: e.From, To: e.To}).apply(ctx, c); err != nil {
		return err
	}
	return Commit{Facet: e.Facet}.apply(ctx, c)
}

func (ResetFilters) apply(_ context.Context, c *Controller) error {
	c.sidebar.ResetFilters()
	return nil
}

func (e SelectPage) apply(_ context.Context, c *Controller) error {
	if !c.pagination.Select(e.Index) {
		c.logger.Debug("page selection ignored", "index", e.Index,
			"active", c.pagination.ActivePageIndex(), "total", c.pagination.TotalPages())
	}
	return nil
}

func (NextPage) apply(_ context.Context, c *Controller) error {
	c.pagination.Next()
	return nil
}

func (PrevPage) apply(_ context.Context, c *Controller) error {
	c.pagination.Prev()
	return nil
}

func (e AddToCart) apply(_ context.Context, c *Controller) error {
	if err := c.products.Click(e.ProductID); err != nil {
		return &Error{Code: ErrCodeInvalidInput, Message: "add to cart", Err: err}
	}
	return nil
}

func (e CartControl) apply(_ context.Context, c *Controller) error {
	if err := c.panel.Control(e.ProductID, e.Op); err != nil {
		return &Error{Code: ErrCodeInvalidInput, Message: "cart control", Err: err}
	}
	return c.takeCartErr()
}

func (OpenCart) apply(_ context.Context, c *Controller) error {
	if c.panel.Open() {
		c.view.RenderCartVisibility(true)
	}
	return nil
}

func (e ClickCart) apply(_ context.Context, c *Controller) error {
	if c.panel.Click(e.Target) {
		c.view.RenderCartVisibility(false)
	}
	return nil
}

func (e Set) apply(ctx context.Context, c *Controller) error {
	err := c.update(ctx, e.Name, e.Value)
	if e.done != nil {
		e.done <- err
	}
	return err
}

func (r fetchResult) apply(ctx context.Context, c *Controller) error {
	return c.resolve(ctx, r)
}

func invalidInput(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}
