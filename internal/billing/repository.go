package billing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Repository persists invoices.
type Repository interface {
	ListByCommerce(ctx context.Context, commerceID int64) ([]Invoice, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	Save(ctx context.Context, inv Invoice) (Invoice, error)
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx backed Repository.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

const invoiceColumns = `id, commerce_id, amount, issued_at, due_date, status, paid_at`

func (r *repository) ListByCommerce(ctx context.Context, commerceID int64) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE commerce_id = $1 ORDER BY issued_at DESC, id DESC`, commerceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Invoice, error) {
		return scanInvoice(row)
	})
}

func (r *repository) Get(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return Invoice{}, fmt.Errorf("invoice %d: %w", id, httpx.ErrNotFound)
	}
	return inv, err
}

func (r *repository) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO invoices (commerce_id, amount, issued_at, due_date, status) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		inv.CommerceID, inv.Amount, inv.IssuedAt, inv.DueDate, string(inv.Status)).Scan(&inv.ID)
	if err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) Save(ctx context.Context, inv Invoice) (Invoice, error) {
	saved, err := scanInvoice(r.db.QueryRow(ctx, `UPDATE invoices SET status = $1, paid_at = $2 WHERE id = $3 RETURNING `+invoiceColumns,
		string(inv.Status), inv.PaidAt, inv.ID))
	if db.IsNoRows(err) {
		return Invoice{}, fmt.Errorf("invoice %d: %w", inv.ID, httpx.ErrNotFound)
	}
	return saved, err
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var status string
	err := row.Scan(&inv.ID, &inv.CommerceID, &inv.Amount, &inv.IssuedAt, &inv.DueDate, &status, &inv.PaidAt)
	inv.Status = Status(status)
	return inv, err
}
