package cart

import (
	"fmt"

	"github.com/roach88/storefront/internal/event"
)

// Target is the element a click lands on while the panel is shown.
type Target string

const (
	TargetCloseButton Target = "close-button"
	TargetOverlay     Target = "overlay"
	TargetContent     Target = "content"
	TargetLineControl Target = "line-control"
)

// Op is a line control operation.
type Op string

const (
	OpIncrement Op = "increment"
	OpDecrement Op = "decrement"
)

// Panel is the cart panel visibility machine: closed or open.
type Panel struct {
	open bool

	Increment *event.Emitter[string]
	Decrement *event.Emitter[string]
}

// NewPanel creates a closed panel.
func NewPanel() *Panel {
	return &Panel{
		Increment: event.New[string](event.IncrementCartProduct),
		Decrement: event.New[string](event.DecrementCartProduct),
	}
}

// IsOpen reports whether the panel is shown.
func (p *Panel) IsOpen() bool { return p.open }

// Open shows the panel (cart button click). Returns false if it was already
// open.
func (p *Panel) Open() bool {
	if p.open {
		return false
	}
	p.open = true
	return true
}

// Click handles a click on target while the panel is shown. The close button
// and the overlay dismiss the panel; clicks on the panel content and its line
// controls are stopped. Returns true when the panel closed.
func (p *Panel) Click(target Target) bool {
	if !p.open {
		return false
	}
	switch target {
	case TargetCloseButton, TargetOverlay:
		p.open = false
		return true
	default:
		return false
	}
}

// Control handles a line control click: the click is stopped at the panel and
// the matching cart event is emitted with the product id.
func (p *Panel) Control(id string, op Op) error {
	p.Click(TargetLineControl)
	switch op {
	case OpIncrement:
		p.Increment.Emit(id)
	case OpDecrement:
		p.Decrement.Emit(id)
	default:
		return fmt.Errorf("unknown cart control %q", op)
	}
	return nil
}
