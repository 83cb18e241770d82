// Package cart holds the in-progress sale of a session and turns it into an order.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/catalog"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// TaxRate is the flat sales tax applied when a cart has tax enabled.
var TaxRate = decimal.RequireFromString("0.19")

// MaxLineQuantity bounds the units of one product in a cart.
const MaxLineQuantity = 9999

var (
	// ErrItemNotFound is returned for operations on a product that is not in the cart.
	ErrItemNotFound = fmt.Errorf("cart item: %w", httpx.ErrNotFound)
	// ErrEmptyCart rejects checkout of a cart without lines.
	ErrEmptyCart = fmt.Errorf("%w: cart is empty", httpx.ErrValidation)
	// ErrQuantityLimit rejects a line that would exceed MaxLineQuantity.
	ErrQuantityLimit = fmt.Errorf("%w: line quantity above %d", httpx.ErrValidation, MaxLineQuantity)
	// ErrMissingIdentity rejects checkout without a tenant or cashier.
	ErrMissingIdentity = fmt.Errorf("%w: checkout requires tenant and cashier", httpx.ErrForbidden)
)

// Line is one product in the cart. Name and price are captured when the
// product is first added.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Amount is price times quantity.
func (l Line) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the ordered list of lines plus the sale options picked at the till.
type Cart struct {
	CommerceID int64  `json:"commerce_id"`
	Lines      []Line `json:"lines"`
	TaxEnabled bool   `json:"tax_enabled"`
	ClientID   *int64 `json:"client_id,omitempty"`
	ClientName string `json:"client_name"`
}

// Totals are the computed amounts of a cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// AddItem adds one unit of product, appending a new line on first add.
func (c *Cart) AddItem(p catalog.Product) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1})
}

// Quantity returns the units of productID in the cart.
func (c *Cart) Quantity(productID int64) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// UpdateQuantity adds delta to the line quantity. A resulting quantity of
// zero or less removes the line.
func (c *Cart) UpdateQuantity(productID int64, delta int) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if delta > MaxLineQuantity-c.Lines[i].Quantity {
			return ErrQuantityLimit
		}
		next := c.Lines[i].Quantity + delta
		if next <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
		c.Lines[i].Quantity = next
		return nil
	}
	return ErrItemNotFound
}

// Remove drops the line for productID.
func (c *Cart) Remove(productID int64) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear empties the cart and resets the sale options.
func (c *Cart) Clear() {
	*c = Cart{CommerceID: c.CommerceID}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Totals computes the cart amounts.
func (c *Cart) Totals() Totals {
	return ComputeTotals(c.Lines, c.TaxEnabled)
}

// ComputeTotals sums price times quantity over lines and applies TaxRate
// when taxEnabled. Values keep full precision.
func ComputeTotals(lines []Line, taxEnabled bool) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}
	tax := decimal.Zero
	if taxEnabled {
		tax = subtotal.Mul(TaxRate)
	}
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// ChangeDue returns tendered minus total, floored at zero.
func ChangeDue(tendered, total decimal.Decimal) decimal.Decimal {
	change := tendered.Sub(total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}
