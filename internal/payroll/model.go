package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status summarises where an employee stands for the current period.
type Status string

// Payment statuses.
const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// Employee is a payroll ledger entry.
type Employee struct {
	ID         int64           `json:"id"`
	CommerceID int64           `json:"commerce_id"`
	Name       string          `json:"name"`
	Role       string          `json:"role"`
	Salary     decimal.Decimal `json:"salary"`
	Advance    decimal.Decimal `json:"advance"`
	Balance    decimal.Decimal `json:"balance"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CreateEmployeeRequest is the payload for a new employee.
type CreateEmployeeRequest struct {
	Name    string          `json:"name" validate:"required,max=120"`
	Role    string          `json:"role" validate:"max=60"`
	Salary  decimal.Decimal `json:"salary"`
	Advance decimal.Decimal `json:"advance"`
}

// UpdateEmployeeRequest is a merge-patch. Balance is always derived.
type UpdateEmployeeRequest struct {
	Name    *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Role    *string          `json:"role,omitempty" validate:"omitempty,max=60"`
	Salary  *decimal.Decimal `json:"salary,omitempty"`
	Advance *decimal.Decimal `json:"advance,omitempty"`
}

// Apply merges the patch onto e and recomputes the balance.
func (req UpdateEmployeeRequest) Apply(e Employee) Employee {
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Role != nil {
		e.Role = *req.Role
	}
	if req.Salary != nil {
		e.Salary = *req.Salary
	}
	if req.Advance != nil {
		e.Advance = *req.Advance
	}
	return Recompute(e)
}

// AdvanceRequest records money handed out ahead of payday.
type AdvanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RolloverResult reports a month rollover.
type RolloverResult struct {
	CommerceID int64      `json:"commerce_id"`
	Employees  []Employee `json:"employees"`
}
