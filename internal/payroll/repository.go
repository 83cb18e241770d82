package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Repository persists the payroll ledger.
type Repository interface {
	List(ctx context.Context, commerceID int64) ([]Employee, error)
	Get(ctx context.Context, commerceID, id int64) (Employee, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	Save(ctx context.Context, e Employee) (Employee, error)
	Delete(ctx context.Context, commerceID, id int64) error
	SaveAll(ctx context.Context, employees []Employee) error
	CommerceIDs(ctx context.Context) ([]int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

const employeeColumns = `id, commerce_id, name, role, salary, advance, balance, created_at, updated_at`

// List returns employees ordered by name.
func (r *PGRepository) List(ctx context.Context, commerceID int64) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE commerce_id = $1 ORDER BY name, id`, commerceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Employee, error) {
		return scanEmployee(row)
	})
}

// Get returns one employee.
func (r *PGRepository) Get(ctx context.Context, commerceID, id int64) (Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE commerce_id = $1 AND id = $2`, commerceID, id))
	if db.IsNoRows(err) {
		return Employee{}, fmt.Errorf("employee %d: %w", id, httpx.ErrNotFound)
	}
	return e, err
}

// Create inserts a new employee.
func (r *PGRepository) Create(ctx context.Context, e Employee) (Employee, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO employees (commerce_id, name, role, salary, advance, balance, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		e.CommerceID, e.Name, e.Role, e.Salary, e.Advance, e.Balance, now).Scan(&e.ID)
	if err != nil {
		return Employee{}, err
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	return e, nil
}

// Save overwrites the stored employee.
func (r *PGRepository) Save(ctx context.Context, e Employee) (Employee, error) {
	return saveEmployee(ctx, r.pool, e)
}

// Delete removes an employee.
func (r *PGRepository) Delete(ctx context.Context, commerceID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE commerce_id = $1 AND id = $2`, commerceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

// SaveAll writes a batch of employees in one transaction.
func (r *PGRepository) SaveAll(ctx context.Context, employees []Employee) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, e := range employees {
			if _, err := saveEmployee(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// CommerceIDs lists tenants that have at least one employee.
func (r *PGRepository) CommerceIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT commerce_id FROM employees ORDER BY commerce_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func saveEmployee(ctx context.Context, q db.Querier, e Employee) (Employee, error) {
	saved, err := scanEmployee(q.QueryRow(ctx, `UPDATE employees SET name = $1, role = $2, salary = $3, advance = $4, balance = $5, updated_at = NOW()
WHERE commerce_id = $6 AND id = $7 RETURNING `+employeeColumns,
		e.Name, e.Role, e.Salary, e.Advance, e.Balance, e.CommerceID, e.ID))
	if db.IsNoRows(err) {
		return Employee{}, fmt.Errorf("employee %d: %w", e.ID, httpx.ErrNotFound)
	}
	return saved, err
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.CommerceID, &e.Name, &e.Role, &e.Salary, &e.Advance, &e.Balance, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Employee{}, err
	}
	e.Status = StatusOf(e)
	return e, nil
}
