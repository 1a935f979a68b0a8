package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_DeliversInSubscriptionOrder(t *testing.T) {
	e := New[int](PageChanged)

	var got []string
	e.Subscribe(func(v int) { got = append(got, "first") })
	e.Subscribe(func(v int) { got = append(got, "second") })

	e.Emit(3)

	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, PageChanged, e.Name())
}

func TestEmitter_Unsubscribe(t *testing.T) {
	e := New[string](SearchChanged)

	calls := 0
	unsubscribe := e.Subscribe(func(string) { calls++ })
	e.Emit("a")
	unsubscribe()
	e.Emit("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.Subscribers())

	// Second call is harmless.
	unsubscribe()
}

func TestEmitter_HandlerMayUnsubscribeItself(t *testing.T) {
	e := New[int](PageChanged)

	var unsubscribe func()
	calls := 0
	unsubscribe = e.Subscribe(func(int) {
		calls++
		unsubscribe()
	})
	other := 0
	e.Subscribe(func(int) { other++ })

	e.Emit(1)
	e.Emit(2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestEmitter_ObserversSeeNameAndPayload(t *testing.T) {
	e := New[string](SearchChanged)

	var order []string
	e.Subscribe(func(string) { order = append(order, "handler") })

	var seenName Name
	var seenPayload any
	e.Observe(func(name Name, payload any) {
		order = append(order, "observer")
		seenName = name
		seenPayload = payload
	})

	e.Emit("phone")

	require.Equal(t, []string{"observer", "handler"}, order)
	assert.Equal(t, SearchChanged, seenName)
	assert.Equal(t, "phone", seenPayload)
}

func TestName_Valid(t *testing.T) {
	for _, n := range Names {
		assert.True(t, n.Valid(), n)
	}
	assert.False(t, Name("filter-change").Valid())
	assert.Len(t, Names, 9)
}
