package storefront

import (
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
)

// View renders controller state. Implementations draw widgets; the
// controller decides when.
type View interface {
	RenderProducts(products []catalog.Product)
	// RenderPagination draws the page selector. total == 0 draws one
	// disabled indicator.
	RenderPagination(active, total int)
	RenderCart(lines []cart.Line, total int64)
	// RenderBadge draws the cart quantity badge; ok is false for an empty
	// cart and the badge hides.
	RenderBadge(quantity int, ok bool)
	RenderCartVisibility(open bool)
}

type nopView struct{}

func (nopView) RenderProducts([]catalog.Product) {}
func (nopView) RenderPagination(int, int)        {}
func (nopView) RenderCart([]cart.Line, int64)    {}
func (nopView) RenderBadge(int, bool)            {}
func (nopView) RenderCartVisibility(bool)        {}
