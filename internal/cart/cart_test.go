package cart

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/catalog"
)

func product(id int64, name, price string) catalog.Product {
	return catalog.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func TestComputeTotalsExample(t *testing.T) {
	lines := []Line{
		{ProductID: 1, Name: "Espresso", Price: decimal.RequireFromString("1.7"), Quantity: 2},
		{ProductID: 2, Name: "Tea", Price: decimal.RequireFromString("1.0"), Quantity: 1},
	}

	plain := ComputeTotals(lines, false)
	assert.Equal(t, "4.4", plain.Subtotal.String())
	assert.True(t, plain.Tax.IsZero())
	assert.Equal(t, "4.4", plain.Total.String())

	taxed := ComputeTotals(lines, true)
	assert.Equal(t, "4.4", taxed.Subtotal.String())
	assert.Equal(t, "0.836", taxed.Tax.String())
	assert.Equal(t, "5.236", taxed.Total.String())
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	a := []Line{
		{ProductID: 1, Price: decimal.RequireFromString("2.35"), Quantity: 3},
		{ProductID: 2, Price: decimal.RequireFromString("0.10"), Quantity: 7},
		{ProductID: 3, Price: decimal.RequireFromString("9.99"), Quantity: 1},
	}
	b := []Line{a[2], a[0], a[1]}
	for _, tax := range []bool{false, true} {
		ta, tb := ComputeTotals(a, tax), ComputeTotals(b, tax)
		assert.True(t, ta.Subtotal.Equal(tb.Subtotal))
		assert.True(t, ta.Total.Equal(tb.Total))
		assert.True(t, ta.Total.Equal(ta.Subtotal.Add(ta.Tax)))
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, true)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	var c Cart
	c.AddItem(product(1, "Espresso", "1.7"))
	c.AddItem(product(2, "Tea", "1"))
	c.AddItem(product(1, "Espresso", "1.7"))

	require.Len(t, c.Lines, 2)
	assert.Equal(t, int64(1), c.Lines[0].ProductID)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 1, c.Lines[1].Quantity)
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	var c Cart
	p := product(1, "Espresso", "1.7")
	c.AddItem(p)
	p.Price = decimal.NewFromInt(3)
	c.AddItem(p)

	assert.Equal(t, "3.4", c.Totals().Subtotal.String())
}

func TestUpdateQuantityRemovesAtZero(t *testing.T) {
	var c Cart
	c.AddItem(product(1, "Espresso", "1.7"))
	c.AddItem(product(1, "Espresso", "1.7"))
	c.AddItem(product(2, "Tea", "1"))

	require.NoError(t, c.UpdateQuantity(1, -2))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, int64(2), c.Lines[0].ProductID)

	require.NoError(t, c.UpdateQuantity(2, 4))
	assert.Equal(t, 5, c.Lines[0].Quantity)

	require.NoError(t, c.UpdateQuantity(2, -10))
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantityLimit(t *testing.T) {
	var c Cart
	c.AddItem(product(1, "Espresso", "1.7"))

	assert.True(t, errors.Is(c.UpdateQuantity(1, math.MaxInt), ErrQuantityLimit))
	assert.True(t, errors.Is(c.UpdateQuantity(1, MaxLineQuantity), ErrQuantityLimit))
	assert.Equal(t, 1, c.Quantity(1))

	require.NoError(t, c.UpdateQuantity(1, MaxLineQuantity-1))
	assert.Equal(t, MaxLineQuantity, c.Quantity(1))

	require.NoError(t, c.UpdateQuantity(1, math.MinInt))
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	var c Cart
	c.AddItem(product(1, "Espresso", "1.7"))
	assert.True(t, errors.Is(c.UpdateQuantity(99, 1), ErrItemNotFound))
	assert.True(t, errors.Is(c.Remove(99), ErrItemNotFound))
}

func TestClearKeepsTenant(t *testing.T) {
	c := Cart{CommerceID: 4, TaxEnabled: true, ClientName: "Ana"}
	c.AddItem(product(1, "Espresso", "1.7"))
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.False(t, c.TaxEnabled)
	assert.Empty(t, c.ClientName)
	assert.Equal(t, int64(4), c.CommerceID)
}

func TestChangeDue(t *testing.T) {
	total := decimal.RequireFromString("5.236")
	assert.Equal(t, "4.764", ChangeDue(decimal.NewFromInt(10), total).String())
	assert.True(t, ChangeDue(decimal.NewFromInt(5), total).IsZero())
	assert.True(t, ChangeDue(total, total).IsZero())
}
