package tenants

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Repository persists commerces.
type Repository interface {
	List(ctx context.Context) ([]Commerce, error)
	Get(ctx context.Context, id int64) (Commerce, error)
	Create(ctx context.Context, c Commerce) (Commerce, error)
	Update(ctx context.Context, c Commerce) (Commerce, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx backed Repository.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

const commerceColumns = `id, name, owner_name, owner_email, phone, subscription_status, subscription_price, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Commerce, error) {
	rows, err := r.db.Query(ctx, `SELECT `+commerceColumns+` FROM commerces ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Commerce, error) {
		return scanCommerce(row)
	})
}

func (r *repository) Get(ctx context.Context, id int64) (Commerce, error) {
	c, err := scanCommerce(r.db.QueryRow(ctx, `SELECT `+commerceColumns+` FROM commerces WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return Commerce{}, fmt.Errorf("commerce %d: %w", id, httpx.ErrNotFound)
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Commerce) (Commerce, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO commerces (name, owner_name, owner_email, phone, subscription_status, subscription_price, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		c.Name, c.OwnerName, c.OwnerEmail, c.Phone, string(c.SubscriptionStatus), c.SubscriptionPrice, now).Scan(&c.ID)
	if err != nil {
		return Commerce{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *repository) Update(ctx context.Context, c Commerce) (Commerce, error) {
	saved, err := scanCommerce(r.db.QueryRow(ctx, `UPDATE commerces SET name = $1, owner_name = $2, owner_email = $3, phone = $4,
subscription_status = $5, subscription_price = $6, updated_at = NOW() WHERE id = $7 RETURNING `+commerceColumns,
		c.Name, c.OwnerName, c.OwnerEmail, c.Phone, string(c.SubscriptionStatus), c.SubscriptionPrice, c.ID))
	if db.IsNoRows(err) {
		return Commerce{}, fmt.Errorf("commerce %d: %w", c.ID, httpx.ErrNotFound)
	}
	return saved, err
}

// Delete removes the commerce; its data goes with it through ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM commerces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("commerce %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanCommerce(row pgx.Row) (Commerce, error) {
	var c Commerce
	var status string
	err := row.Scan(&c.ID, &c.Name, &c.OwnerName, &c.OwnerEmail, &c.Phone, &status, &c.SubscriptionPrice, &c.CreatedAt, &c.UpdatedAt)
	c.SubscriptionStatus = SubscriptionStatus(status)
	return c, err
}
