package billing

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// ErrInvalidStatus rejects a transition the invoice state machine does not define.
var ErrInvalidStatus = fmt.Errorf("%w: invalid invoice status transition", httpx.ErrConflict)

// MarkPaid moves a pending invoice to paid. A paid invoice is returned
// unchanged with changed=false. Overdue invoices cannot be paid.
func MarkPaid(inv Invoice, at time.Time) (Invoice, bool, error) {
	switch inv.Status {
	case StatusPending:
		paidAt := at.UTC()
		inv.Status = StatusPaid
		inv.PaidAt = &paidAt
		return inv, true, nil
	case StatusPaid:
		return inv, false, nil
	default:
		return inv, false, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, inv.Status, StatusPaid)
	}
}

// DefaultDueDate is issuedAt plus days, truncated to the calendar day.
func DefaultDueDate(issuedAt time.Time, days int) time.Time {
	y, m, d := issuedAt.UTC().AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
