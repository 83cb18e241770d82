package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Balance is salary minus advance.
func Balance(e Employee) decimal.Decimal {
	return e.Salary.Sub(e.Advance)
}

// StatusOf derives the payment status from balance and advance.
func StatusOf(e Employee) Status {
	switch {
	case !e.Balance.IsPositive():
		return StatusPaid
	case e.Advance.IsPositive():
		return StatusPartial
	default:
		return StatusPending
	}
}

// Recompute sets balance and status from salary and advance.
func Recompute(e Employee) Employee {
	e.Balance = Balance(e)
	e.Status = StatusOf(e)
	return e
}

// Restore accepts a stored employee as it was exported. A settled row
// (advance and balance zero) keeps its balance so it is not owed again;
// any other balance is recomputed.
func Restore(e Employee) Employee {
	if e.Advance.IsZero() && e.Balance.IsZero() {
		e.Status = StatusOf(e)
		return e
	}
	return Recompute(e)
}

// Pay settles the period in full.
func Pay(e Employee) Employee {
	e.Advance = decimal.Zero
	e.Balance = decimal.Zero
	e.Status = StatusOf(e)
	return e
}

// RecordAdvance adds amount to the employee's advance.
func RecordAdvance(e Employee, amount decimal.Decimal) (Employee, error) {
	if !amount.IsPositive() {
		return Employee{}, fmt.Errorf("%w: advance must be positive", httpx.ErrValidation)
	}
	e.Advance = e.Advance.Add(amount)
	if err := Validate(e); err != nil {
		return Employee{}, err
	}
	return Recompute(e), nil
}

// NewMonthRollover opens a new period: every balance is recomputed from
// salary and the advance carried over.
func NewMonthRollover(employees []Employee) []Employee {
	out := make([]Employee, len(employees))
	for i, e := range employees {
		out[i] = Recompute(e)
	}
	return out
}

// Validate checks the stored amounts of an employee.
func Validate(e Employee) error {
	if e.Name == "" {
		return fmt.Errorf("%w: employee name is required", httpx.ErrValidation)
	}
	if e.Salary.IsNegative() {
		return fmt.Errorf("%w: salary must not be negative", httpx.ErrValidation)
	}
	if e.Advance.IsNegative() {
		return fmt.Errorf("%w: advance must not be negative", httpx.ErrValidation)
	}
	return nil
}
