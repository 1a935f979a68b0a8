package cart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/catalog"
)

func TestCartScenario(t *testing.T) {
	var c Cart
	p1 := catalog.Product{ID: "p1", Title: "Mascara", Price: 100}

	_, ok := c.TotalQuantity()
	assert.False(t, ok, "empty cart has no quantity")

	c.Add(p1)
	assertCart(t, &c, 100, 1)

	c.Add(p1)
	assertCart(t, &c, 200, 2)

	require.NoError(t, c.Decrement("p1"))
	assertCart(t, &c, 100, 1)

	require.NoError(t, c.Decrement("p1"))
	assert.Equal(t, int64(0), c.Total())
	_, ok = c.Line("p1")
	assert.False(t, ok, "line removed")
	assert.Empty(t, c.Lines())
	_, ok = c.TotalQuantity()
	assert.False(t, ok)
}

func assertCart(t *testing.T, c *Cart, total int64, qty int) {
	t.Helper()
	assert.Equal(t, total, c.Total())
	n, ok := c.TotalQuantity()
	require.True(t, ok)
	assert.Equal(t, qty, n)
}

func TestUnknownLine(t *testing.T) {
	var c Cart
	c.Add(catalog.Product{ID: "p1", Price: 5})

	require.ErrorIs(t, c.Increment("nope"), ErrNoSuchLine)
	require.ErrorIs(t, c.Decrement("nope"), ErrNoSuchLine)

	assert.Equal(t, int64(5), c.Total())
	assert.Equal(t, 1, c.Len())
}

func TestLinesAreCopies(t *testing.T) {
	var c Cart
	c.Add(catalog.Product{ID: "p1", Price: 10, Images: []string{"a.png"}})

	lines := c.Lines()
	lines[0].Quantity = 99
	lines[0].Images[0] = "changed"

	l, ok := c.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 1, l.Quantity)
	assert.Equal(t, "a.png", l.Images[0])
}

func TestLinesKeepInsertionOrder(t *testing.T) {
	var c Cart
	for _, id := range []string{"c", "a", "b"} {
		c.Add(catalog.Product{ID: id})
	}
	require.NoError(t, c.Increment("a"))

	var ids []string
	for _, l := range c.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

// Random add/increment/decrement sequences keep every quantity ≥ 1 and the
// total equal to the exact sum of line subtotals.
func TestCartArithmeticProperty(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Price: 100},
		{ID: "p2", Price: 1999},
		{ID: "p3", Price: 0},
		{ID: "p4", Price: 85000},
	}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		var c Cart
		model := map[string]int{}

		for step := 0; step < 200; step++ {
			p := products[rng.Intn(len(products))]
			switch rng.Intn(3) {
			case 0:
				c.Add(p)
				model[p.ID]++
			case 1:
				err := c.Increment(p.ID)
				if model[p.ID] == 0 {
					require.ErrorIs(t, err, ErrNoSuchLine)
				} else {
					require.NoError(t, err)
					model[p.ID]++
				}
			case 2:
				err := c.Decrement(p.ID)
				if model[p.ID] == 0 {
					require.ErrorIs(t, err, ErrNoSuchLine)
				} else {
					require.NoError(t, err)
					model[p.ID]--
				}
			}

			var want int64
			var wantQty int
			for _, l := range c.Lines() {
				require.GreaterOrEqual(t, l.Quantity, 1)
				require.Equal(t, model[l.ProductID], l.Quantity)
				want += l.UnitPrice * int64(l.Quantity)
				wantQty += l.Quantity
			}
			require.Equal(t, want, c.Total())

			n, ok := c.TotalQuantity()
			require.Equal(t, c.Len() > 0, ok)
			require.Equal(t, wantQty, n)

			for id, q := range model {
				_, present := c.Line(id)
				require.Equal(t, q > 0, present)
			}
		}
	}
}
