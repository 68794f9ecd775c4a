package cart

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price string, stock int) Product {
	return Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Image:    "https://img.example/" + id + ".png",
		Category: "mates",
		Stock:    stock,
	}
}

func TestAddItemToEmptyCart(t *testing.T) {
	p := product("p1", "10.50", 5)

	c := Reduce(Empty(), AddItem{Product: p, Quantity: 3})

	require.Len(t, c.Lines(), 1)
	line := c.Lines()[0]
	assert.Equal(t, "p1", line.ProductID)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 5, line.StockCeiling)
	assert.Equal(t, 3, c.TotalItems())
	assert.True(t, decimal.RequireFromString("31.50").Equal(c.TotalAmount()))
}

func TestAddItemTwiceClampsToStock(t *testing.T) {
	p := product("p1", "2", 5)

	c := Reduce(Empty(), AddItem{Product: p, Quantity: 3})
	c = Reduce(c, AddItem{Product: p, Quantity: 4})

	assert.Equal(t, 5, c.Quantity("p1"))
	assert.Equal(t, 5, c.TotalItems())
	assert.True(t, decimal.NewFromInt(10).Equal(c.TotalAmount()))
}

func TestAddItemNewLineClampsToStock(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "1", 2), Quantity: 9})
	assert.Equal(t, 2, c.Quantity("p1"))
}

func TestAddItemUsesCeilingCapturedAtCreation(t *testing.T) {
	first := product("p1", "1", 3)
	restocked := product("p1", "1", 50)

	c := Reduce(Empty(), AddItem{Product: first, Quantity: 2})
	c = Reduce(c, AddItem{Product: restocked, Quantity: 10})

	assert.Equal(t, 3, c.Quantity("p1"))
	line, ok := c.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 3, line.StockCeiling)
}

func TestAddItemOutOfStockCreatesNothing(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "1", 0), Quantity: 1})
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.TotalItems())
}

func TestAddItemNegativeQuantityDecrements(t *testing.T) {
	p := product("p1", "4", 10)
	c := Reduce(Empty(), AddItem{Product: p, Quantity: 3})

	c = Reduce(c, AddItem{Product: p, Quantity: -1})
	assert.Equal(t, 2, c.Quantity("p1"))

	c = Reduce(c, AddItem{Product: p, Quantity: -5})
	assert.False(t, c.Contains("p1"))
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.TotalAmount().IsZero())
}

func TestAddItemNegativeQuantityOnAbsentLineIsNoop(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "4", 10), Quantity: -1})
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "1", 5), Quantity: 2})

	c = Reduce(c, UpdateQuantity{ProductID: "p1", Quantity: 0})

	assert.False(t, c.Contains("p1"))
	assert.Equal(t, 0, c.Quantity("p1"))
}

func TestUpdateQuantityDoesNotClamp(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "1", 5), Quantity: 2})

	c = Reduce(c, UpdateQuantity{ProductID: "p1", Quantity: 8})

	assert.Equal(t, 8, c.Quantity("p1"))
	assert.Equal(t, 8, c.TotalItems())
}

func TestUpdateQuantityAbsentLineIsNoop(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "1", 5), Quantity: 2})

	next := Reduce(c, UpdateQuantity{ProductID: "missing", Quantity: 3})

	assert.Equal(t, c.Lines(), next.Lines())
	assert.False(t, next.Contains("missing"))
}

func TestRemoveMissingLeavesTotalsUnchanged(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "3.25", 5), Quantity: 2})

	next := Reduce(c, RemoveItem{ProductID: "missing"})

	assert.Equal(t, c.TotalItems(), next.TotalItems())
	assert.True(t, c.TotalAmount().Equal(next.TotalAmount()))
}

func TestRemoveKeepsInsertionOrder(t *testing.T) {
	c := Empty()
	for _, id := range []string{"a", "b", "c"} {
		c = Reduce(c, AddItem{Product: product(id, "1", 5), Quantity: 1})
	}

	c = Reduce(c, RemoveItem{ProductID: "b"})

	ids := make([]string, 0, 2)
	for _, l := range c.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestClearCart(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "1", 5), Quantity: 2})
	c = Reduce(c, AddItem{Product: product("p2", "7", 5), Quantity: 1})

	c = Reduce(c, ClearCart{})

	assert.Empty(t, c.Lines())
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.TotalAmount().IsZero())
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := Reduce(Empty(), AddItem{Product: product("p1", "1", 5), Quantity: 2})

	_ = Reduce(before, UpdateQuantity{ProductID: "p1", Quantity: 4})
	_ = Reduce(before, AddItem{Product: product("p1", "1", 5), Quantity: 1})

	assert.Equal(t, 2, before.Quantity("p1"))
}

func TestLinesReturnsCopy(t *testing.T) {
	c := Reduce(Empty(), AddItem{Product: product("p1", "1", 5), Quantity: 2})

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 2, c.Quantity("p1"))
}

func TestLineRemainingStock(t *testing.T) {
	assert.Equal(t, 2, Line{StockCeiling: 5, Quantity: 3}.RemainingStock())
	assert.Equal(t, 0, Line{StockCeiling: 5, Quantity: 8}.RemainingStock())
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	catalog := []Product{
		product("a", "1.10", 3),
		product("b", "0.99", 10),
		product("c", "25", 1),
		product("d", "4.50", 0),
	}

	c := Empty()
	for step := 0; step < 2000; step++ {
		p := catalog[rng.IntN(len(catalog))]
		var a Action
		switch rng.IntN(5) {
		case 0, 1:
			a = AddItem{Product: p, Quantity: rng.IntN(7) - 2}
		case 2:
			a = RemoveItem{ProductID: p.ID}
		case 3:
			a = UpdateQuantity{ProductID: p.ID, Quantity: rng.IntN(6) - 1}
		default:
			if rng.IntN(10) == 0 {
				a = ClearCart{}
			} else {
				a = AddItem{Product: p, Quantity: 1}
			}
		}
		prev := c
		c = Reduce(c, a)

		items := 0
		amount := decimal.Zero
		seen := map[string]bool{}
		for _, l := range c.Lines() {
			require.Greater(t, l.Quantity, 0, "step %d %s", step, a.Name())
			require.False(t, seen[l.ProductID], "duplicate line at step %d", step)
			seen[l.ProductID] = true
			if add, ok := a.(AddItem); ok && add.Product.ID == l.ProductID && l.Quantity > prev.Quantity(l.ProductID) {
				require.LessOrEqual(t, l.Quantity, l.StockCeiling, "step %d", step)
			}
			items += l.Quantity
			amount = amount.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		require.Equal(t, items, c.TotalItems(), "step %d", step)
		require.True(t, amount.Equal(c.TotalAmount()), "step %d", step)
	}
}
