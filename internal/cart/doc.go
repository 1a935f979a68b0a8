// Package cart holds the shopping cart line items and the visibility state of
// the cart panel.
//
// Cart is a pure state machine: it never talks to the network and emits
// nothing. Its owner (the storefront controller) re-renders after every
// mutation. Panel models the slide-in panel: it opens from the cart button,
// closes from the close button or the overlay, and swallows clicks on its own
// content. Its line controls emit increment-cart-product and
// decrement-cart-product with the product id.
//
// Neither type is safe for concurrent use; both are owned by a single
// goroutine.
package cart
