package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Repository persists catalog products.
type Repository interface {
	List(ctx context.Context, commerceID int64, filters ListFilters) ([]Product, error)
	Get(ctx context.Context, commerceID, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, commerceID, id int64) error
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx backed Repository.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

const productColumns = `id, commerce_id, name, price, stock, category, icon, created_at, updated_at`

func (r *repository) List(ctx context.Context, commerceID int64, filters ListFilters) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE commerce_id = $1`
	args := []any{commerceID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Get(ctx context.Context, commerceID, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE commerce_id = $1 AND id = $2`, commerceID, id)
	p, err := scanProduct(row)
	if db.IsNoRows(err) {
		return Product{}, fmt.Errorf("product %d: %w", id, httpx.ErrNotFound)
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO products (commerce_id, name, price, stock, category, icon, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		product.CommerceID, product.Name, product.Price, product.Stock, product.Category, product.Icon, now).Scan(&product.ID)
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, product Product) (Product, error) {
	product.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, `UPDATE products SET name = $1, price = $2, stock = $3, category = $4, icon = $5, updated_at = $6
WHERE commerce_id = $7 AND id = $8`,
		product.Name, product.Price, product.Stock, product.Category, product.Icon, product.UpdatedAt, product.CommerceID, product.ID)
	if err != nil {
		return Product{}, err
	}
	if tag.RowsAffected() == 0 {
		return Product{}, fmt.Errorf("product %d: %w", product.ID, httpx.ErrNotFound)
	}
	return product, nil
}

func (r *repository) Delete(ctx context.Context, commerceID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE commerce_id = $1 AND id = $2`, commerceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CommerceID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.Icon, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
