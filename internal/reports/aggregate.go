package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/expenses"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
)

// ProductTotal is the quantity sold of one product name.
type ProductTotal struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// TopProducts sums line quantities per product name and returns the n best
// sellers. Ties keep the order in which names were first seen.
func TopProducts(list []orders.Order, n int) []ProductTotal {
	if n <= 0 {
		return []ProductTotal{}
	}
	index := make(map[string]int)
	totals := make([]ProductTotal, 0)
	for _, o := range list {
		for _, line := range o.Lines {
			i, ok := index[line.Name]
			if !ok {
				i = len(totals)
				index[line.Name] = i
				totals = append(totals, ProductTotal{Name: line.Name})
			}
			totals[i].Quantity += line.Quantity
		}
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Quantity > totals[j].Quantity
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// TotalRevenue sums order totals.
func TotalRevenue(list []orders.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range list {
		total = total.Add(o.Total)
	}
	return total
}

// TotalCredit sums outstanding client credit.
func TotalCredit(list []clients.Client) decimal.Decimal {
	return clients.TotalCredit(list)
}

// TotalExpenses sums expense amounts.
func TotalExpenses(list []expenses.Expense) decimal.Decimal {
	return expenses.Total(list)
}
