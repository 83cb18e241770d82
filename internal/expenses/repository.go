package expenses

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
)

// Repository persists expenses. There is no update or delete.
type Repository interface {
	List(ctx context.Context, commerceID int64, filters ListFilters) ([]Expense, error)
	Create(ctx context.Context, e Expense) (Expense, error)
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx backed Repository.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

func (r *repository) List(ctx context.Context, commerceID int64, filters ListFilters) ([]Expense, error) {
	query := `SELECT id, commerce_id, description, category, amount, spent_on, created_at FROM expenses WHERE commerce_id = $1`
	args := []any{commerceID}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		query += ` AND spent_on >= $` + strconv.Itoa(len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		query += ` AND spent_on < $` + strconv.Itoa(len(args))
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY spent_on DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Expense, error) {
		var e Expense
		err := row.Scan(&e.ID, &e.CommerceID, &e.Description, &e.Category, &e.Amount, &e.SpentOn, &e.CreatedAt)
		return e, err
	})
}

func (r *repository) Create(ctx context.Context, e Expense) (Expense, error) {
	e.CreatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO expenses (commerce_id, description, category, amount, spent_on, created_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		e.CommerceID, e.Description, e.Category, e.Amount, e.SpentOn, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}
