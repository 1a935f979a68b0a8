// Package event implements the typed publish/subscribe surface that storefront
// components use to talk to each other.
//
// Components never hold references to their parents. Each component exposes
// one Emitter per event it can produce, and the parent subscribes explicitly.
// Event names are the wire contract between components and must not change.
//
// DISPATCH MODEL:
// Emit calls subscribers synchronously, in subscription order, on the caller's
// goroutine. In the storefront this is always the controller's single-writer
// loop, so handlers never run concurrently with each other.
package event
