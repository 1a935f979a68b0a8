package event

// Handler receives a typed event payload.
type Handler[T any] func(T)

// Observer receives every emission of an emitter with its wire name.
// Used for journaling and tracing; observers run before subscribers, so a
// journal sees an event ahead of whatever it causes.
type Observer func(name Name, payload any)

// Emitter is a typed, named event source owned by exactly one component.
//
// The zero value is not usable; create emitters with New.
// Emitter is not safe for concurrent use (see package doc).
type Emitter[T any] struct {
	name      Name
	nextID    int
	handlers  []subscription[T]
	observers []Observer
}

type subscription[T any] struct {
	id int
	fn Handler[T]
}

// New creates an emitter for the given event name.
func New[T any](name Name) *Emitter[T] {
	return &Emitter[T]{name: name}
}

// Name returns the wire name of the event.
func (e *Emitter[T]) Name() Name {
	return e.name
}

// Subscribe registers a handler and returns a function that removes it.
func (e *Emitter[T]) Subscribe(fn Handler[T]) (unsubscribe func()) {
	e.nextID++
	id := e.nextID
	e.handlers = append(e.handlers, subscription[T]{id: id, fn: fn})
	return func() {
		for i, s := range e.handlers {
			if s.id == id {
				e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
				return
			}
		}
	}
}

// Observe registers an untyped observer.
func (e *Emitter[T]) Observe(fn Observer) {
	e.observers = append(e.observers, fn)
}

// Emit delivers payload to every observer, then to every subscriber.
//
// The handler list is snapshotted first so a handler may unsubscribe itself.
func (e *Emitter[T]) Emit(payload T) {
	handlers := make([]subscription[T], len(e.handlers))
	copy(handlers, e.handlers)

	for _, o := range e.observers {
		o(e.name, payload)
	}
	for _, s := range handlers {
		s.fn(payload)
	}
}

// Subscribers returns the number of registered handlers.
func (e *Emitter[T]) Subscribers() int {
	return len(e.handlers)
}
