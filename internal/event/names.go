package event

// Name identifies an event on the wire.
type Name string

const (
	AddToCart            Name = "add-to-cart"
	DecrementCartProduct Name = "decrement-cart-product"
	IncrementCartProduct Name = "increment-cart-product"
	FilterChanged        Name = "filter-changed"
	FiltersChanged       Name = "filters-changed"
	FiltersReset         Name = "filters-reset"
	SearchChanged        Name = "search-changed"
	PageChanged          Name = "page-changed"
	RangeSelected        Name = "range-selected"
)

// Names lists every event name in a fixed order.
var Names = []Name{
	AddToCart,
	DecrementCartProduct,
	IncrementCartProduct,
	FilterChanged,
	FiltersChanged,
	FiltersReset,
	SearchChanged,
	PageChanged,
	RangeSelected,
}

// Valid reports whether n is one of the known event names.
func (n Name) Valid() bool {
	for _, known := range Names {
		if n == known {
			return true
		}
	}
	return false
}
