package reports

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/orders"
	"github.com/odyssey-erp/odyssey-pos/internal/tenants"
	"github.com/odyssey-erp/odyssey-pos/internal/view"
	"github.com/odyssey-erp/odyssey-pos/report"
)

// ReceiptTemplate is the printable order receipt.
const ReceiptTemplate = "receipts/order.html"

// OrderLookup fetches one order of a tenant.
type OrderLookup interface {
	Get(ctx context.Context, commerceID, id int64) (orders.Order, error)
}

// CommerceLookup resolves the tenant named on receipts.
type CommerceLookup interface {
	Get(ctx context.Context, id int64) (tenants.Commerce, error)
}

// Receipt is the printed form of an order.
type Receipt struct {
	Commerce string
	Phone    string
	Order    orders.Order
	Lines    []ReceiptLine
}

// ReceiptLine is one order line with its extended amount.
type ReceiptLine struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
	Amount   decimal.Decimal
}

// BuildReceipt lays out order for printing.
func BuildReceipt(commerce tenants.Commerce, order orders.Order) Receipt {
	lines := make([]ReceiptLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, ReceiptLine{
			Name:     l.Name,
			Quantity: l.Quantity,
			Price:    l.Price,
			Amount:   l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return Receipt{Commerce: commerce.Name, Phone: commerce.Phone, Order: order, Lines: lines}
}

// ReceiptHTML renders the receipt of one of the tenant's orders.
func (s *Service) ReceiptHTML(ctx context.Context, commerceID, orderID int64) ([]byte, error) {
	if s.lookup == nil || s.templates == nil {
		return nil, fmt.Errorf("reports: receipts not configured")
	}
	order, err := s.lookup.Get(ctx, commerceID, orderID)
	if err != nil {
		return nil, err
	}
	var commerce tenants.Commerce
	if s.commerces != nil {
		if commerce, err = s.commerces.Get(ctx, commerceID); err != nil {
			return nil, err
		}
	}
	receipt := BuildReceipt(commerce, order)
	var buf bytes.Buffer
	title := "Receipt #" + strconv.FormatInt(order.ID, 10)
	if err := s.templates.RenderTo(&buf, ReceiptTemplate, view.TemplateData{Title: title, Data: receipt}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReceiptPDF renders the receipt on 80mm thermal paper.
func (s *Service) ReceiptPDF(ctx context.Context, commerceID, orderID int64) ([]byte, error) {
	if s.pdf == nil {
		return nil, fmt.Errorf("reports: pdf renderer not configured")
	}
	html, err := s.ReceiptHTML(ctx, commerceID, orderID)
	if err != nil {
		return nil, err
	}
	return s.pdf.RenderHTML(ctx, "receipt.html", html, report.WithPaper(report.Receipt80mm), report.WithCSSPageSize())
}
