package clients

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Repository persists clients.
type Repository interface {
	List(ctx context.Context, commerceID int64, filters ListFilters) ([]Client, error)
	Get(ctx context.Context, commerceID, id int64) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, client Client) (Client, error)
	Delete(ctx context.Context, commerceID, id int64) error
	// AdjustCredit adds delta to the stored credit. It fails with
	// ErrInsufficientCredit instead of letting credit go below zero.
	AdjustCredit(ctx context.Context, commerceID, id int64, delta decimal.Decimal) (Client, error)
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx backed Repository.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

const clientColumns = `id, commerce_id, name, phone, email, address, credit, is_vip, created_at, updated_at`

func (r *repository) List(ctx context.Context, commerceID int64, filters ListFilters) ([]Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE commerce_id = $1`
	args := []any{commerceID}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (name ILIKE $` + n + ` OR phone ILIKE $` + n + ` OR email ILIKE $` + n + `)`
	}
	if filters.VIPOnly {
		query += ` AND is_vip`
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Client, error) {
		return scanClient(row)
	})
}

func (r *repository) Get(ctx context.Context, commerceID, id int64) (Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE commerce_id = $1 AND id = $2`, commerceID, id))
	if db.IsNoRows(err) {
		return Client{}, fmt.Errorf("client %d: %w", id, httpx.ErrNotFound)
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO clients (commerce_id, name, phone, email, address, credit, is_vip, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`,
		client.CommerceID, client.Name, client.Phone, client.Email, client.Address, client.Credit, client.IsVIP, now).Scan(&client.ID)
	if err != nil {
		return Client{}, err
	}
	client.CreatedAt = now
	client.UpdatedAt = now
	return client, nil
}

func (r *repository) Update(ctx context.Context, client Client) (Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `UPDATE clients SET name = $1, phone = $2, email = $3, address = $4, is_vip = $5, updated_at = NOW()
WHERE commerce_id = $6 AND id = $7 RETURNING `+clientColumns,
		client.Name, client.Phone, client.Email, client.Address, client.IsVIP, client.CommerceID, client.ID))
	if db.IsNoRows(err) {
		return Client{}, fmt.Errorf("client %d: %w", client.ID, httpx.ErrNotFound)
	}
	return c, err
}

func (r *repository) Delete(ctx context.Context, commerceID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE commerce_id = $1 AND id = $2`, commerceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) AdjustCredit(ctx context.Context, commerceID, id int64, delta decimal.Decimal) (Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `UPDATE clients SET credit = credit + $1, updated_at = NOW()
WHERE commerce_id = $2 AND id = $3 AND credit + $1 >= 0 RETURNING `+clientColumns, delta, commerceID, id))
	if db.IsNoRows(err) {
		if _, getErr := r.Get(ctx, commerceID, id); getErr != nil {
			return Client{}, getErr
		}
		return Client{}, ErrInsufficientCredit
	}
	return c, err
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.CommerceID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Credit, &c.IsVIP, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
