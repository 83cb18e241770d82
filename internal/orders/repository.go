package orders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Repository persists the order ledger.
type Repository interface {
	Create(ctx context.Context, order Order, opts CreateOptions) (Order, error)
	List(ctx context.Context, commerceID int64, filters ListFilters) ([]Order, error)
	Get(ctx context.Context, commerceID, id int64) (Order, error)
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

const orderColumns = `id, commerce_id, cashier_id, client_id, client_name, tax_enabled, subtotal, tax, total, tendered, change_due, created_at`

// Create writes the order and its lines in one transaction, together with the
// idempotency claim, stock decrement and audit entry requested by opts.
func (r *PGRepository) Create(ctx context.Context, order Order, opts CreateOptions) (Order, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if opts.IdempotencyKey != "" {
			if err := shared.ClaimIdempotencyKey(ctx, tx, opts.IdempotencyKey, IdempotencyModule); err != nil {
				return err
			}
		}
		if order.CreatedAt.IsZero() {
			order.CreatedAt = time.Now().UTC()
		}
		err := tx.QueryRow(ctx, `INSERT INTO orders (commerce_id, cashier_id, client_id, client_name, tax_enabled, subtotal, tax, total, tendered, change_due, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
			order.CommerceID, order.CashierID, order.ClientID, order.ClientName, order.TaxEnabled,
			order.Subtotal, order.Tax, order.Total, order.Tendered, order.ChangeDue, order.CreatedAt).Scan(&order.ID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		batch := &pgx.Batch{}
		for i, line := range order.Lines {
			batch.Queue(`INSERT INTO order_lines (order_id, product_id, name, price, quantity, line_order) VALUES ($1, $2, $3, $4, $5, $6)`,
				order.ID, line.ProductID, line.Name, line.Price, line.Quantity, i)
			if opts.DecrementStock {
				batch.Queue(`UPDATE products SET stock = GREATEST(stock - $1, 0), updated_at = NOW() WHERE commerce_id = $2 AND id = $3`,
					line.Quantity, order.CommerceID, line.ProductID)
			}
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order lines: %w", err)
		}

		return shared.RecordAudit(ctx, tx, shared.AuditLog{
			ActorID:  order.CashierID,
			Action:   "checkout",
			Entity:   "order",
			EntityID: strconv.FormatInt(order.ID, 10),
			Meta: map[string]any{
				"commerce_id": order.CommerceID,
				"total":       order.Total.StringFixed(2),
				"lines":       len(order.Lines),
			},
			At: order.CreatedAt,
		})
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// List returns orders newest first with their lines.
func (r *PGRepository) List(ctx context.Context, commerceID int64, filters ListFilters) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE commerce_id = $1`
	args := []any{commerceID}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		query += ` AND created_at < $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns one order with its lines.
func (r *PGRepository) Get(ctx context.Context, commerceID, id int64) (Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE commerce_id = $1 AND id = $2`, commerceID, id))
	if err != nil {
		if db.IsNoRows(err) {
			return Order{}, fmt.Errorf("order %d: %w", id, httpx.ErrNotFound)
		}
		return Order{}, err
	}
	orders := []Order{order}
	if err := r.attachLines(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PGRepository) attachLines(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Lines = []Line{}
	}
	rows, err := r.pool.Query(ctx, `SELECT order_id, product_id, name, price, quantity FROM order_lines WHERE order_id = ANY($1) ORDER BY order_id, line_order`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var orderID int64
		var l Line
		if err := rows.Scan(&orderID, &l.ProductID, &l.Name, &l.Price, &l.Quantity); err != nil {
			return err
		}
		i := index[orderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CommerceID, &o.CashierID, &o.ClientID, &o.ClientName, &o.TaxEnabled,
		&o.Subtotal, &o.Tax, &o.Total, &o.Tendered, &o.ChangeDue, &o.CreatedAt)
	return o, err
}
