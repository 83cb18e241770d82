package snapshot

import (
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/catalog"
	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/expenses"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
	"github.com/odyssey-erp/odyssey-pos/internal/payroll"
)

// Snapshot is the full state of one tenant.
type Snapshot struct {
	Products   []catalog.Product  `json:"products"`
	Clients    []clients.Client   `json:"clients"`
	Employees  []payroll.Employee `json:"employees"`
	Orders     []orders.Order     `json:"orders"`
	Expenses   []expenses.Expense `json:"expenses"`
	ExportedAt time.Time          `json:"exported_at"`
}

// ImportResult counts the rows written by an import.
type ImportResult struct {
	Products  int `json:"products"`
	Clients   int `json:"clients"`
	Employees int `json:"employees"`
	Orders    int `json:"orders"`
	Expenses  int `json:"expenses"`
}
