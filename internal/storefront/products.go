package storefront

import (
	"fmt"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/event"
)

// ProductList is the rendered product grid. Its cards emit add-to-cart with
// the full product.
type ProductList struct {
	items []catalog.Product

	AddToCart *event.Emitter[catalog.Product]
}

// NewProductList creates an empty product list.
func NewProductList() *ProductList {
	return &ProductList{AddToCart: event.New[catalog.Product](event.AddToCart)}
}

// Set replaces the displayed products.
func (l *ProductList) Set(items []catalog.Product) {
	l.items = append([]catalog.Product(nil), items...)
}

// Items returns a copy of the displayed products.
func (l *ProductList) Items() []catalog.Product {
	out := make([]catalog.Product, len(l.items))
	copy(out, l.items)
	return out
}

// Click handles the add-to-cart button of a displayed product card.
func (l *ProductList) Click(id string) error {
	for _, p := range l.items {
		if p.ID == id {
			l.AddToCart.Emit(p)
			return nil
		}
	}
	return fmt.Errorf("product %q is not displayed", id)
}
