package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/expenses"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
)

// DefaultTopN is the number of best sellers listed on the dashboard.
const DefaultTopN = 5

// Filter scopes a report to one tenant and an optional date range.
// To is exclusive.
type Filter struct {
	CommerceID int64
	From       time.Time
	To         time.Time
}

// Summary is the dashboard view of a tenant's books.
type Summary struct {
	CommerceID        int64           `json:"commerce_id"`
	From              *time.Time      `json:"from,omitempty"`
	To                *time.Time      `json:"to,omitempty"`
	Revenue           decimal.Decimal `json:"revenue"`
	OrderCount        int             `json:"order_count"`
	AverageTicket     decimal.Decimal `json:"average_ticket"`
	CreditOutstanding decimal.Decimal `json:"credit_outstanding"`
	Expenses          decimal.Decimal `json:"expenses"`
	Net               decimal.Decimal `json:"net"`
	TopProducts       []ProductTotal  `json:"top_products"`
	// PeakHour is never derived from orders; it stays null until a real
	// source exists.
	PeakHour         *int      `json:"peak_hour"`
	PeakHourResolved bool      `json:"peak_hour_resolved"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// BuildSummary aggregates the ledgers into a Summary.
func BuildSummary(filter Filter, orderList []orders.Order, clientList []clients.Client, expenseList []expenses.Expense, topN int, now time.Time) Summary {
	revenue := TotalRevenue(orderList)
	spent := TotalExpenses(expenseList)
	average := decimal.Zero
	if len(orderList) > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(len(orderList)))).Round(2)
	}
	s := Summary{
		CommerceID:        filter.CommerceID,
		Revenue:           revenue,
		OrderCount:        len(orderList),
		AverageTicket:     average,
		CreditOutstanding: TotalCredit(clientList),
		Expenses:          spent,
		Net:               revenue.Sub(spent),
		TopProducts:       TopProducts(orderList, topN),
		GeneratedAt:       now.UTC(),
	}
	if !filter.From.IsZero() {
		from := filter.From.UTC()
		s.From = &from
	}
	if !filter.To.IsZero() {
		to := filter.To.UTC()
		s.To = &to
	}
	return s
}
