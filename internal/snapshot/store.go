package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Store replaces a tenant's ledgers wholesale.
type Store interface {
	Replace(ctx context.Context, commerceID int64, snap Snapshot, audit shared.AuditLog) (ImportResult, error)
}

// PGStore implements Store with one Postgres transaction.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore returns a Postgres backed Store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Replace deletes the tenant's products, clients, employees, expenses and
// orders and inserts the snapshot rows under fresh ids. Order references to
// imported clients and products are remapped; unknown client references are
// dropped. The audit entry is written in the same transaction.
func (s *PGStore) Replace(ctx context.Context, commerceID int64, snap Snapshot, audit shared.AuditLog) (ImportResult, error) {
	var result ImportResult
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, table := range []string{"orders", "expenses", "employees", "clients", "products"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE commerce_id = $1`, commerceID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		productIDs, err := insertProducts(ctx, tx, commerceID, snap)
		if err != nil {
			return err
		}
		clientIDs, err := insertClients(ctx, tx, commerceID, snap)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		employees := make([][]any, 0, len(snap.Employees))
		for _, e := range snap.Employees {
			employees = append(employees, []any{commerceID, e.Name, e.Role, e.Salary, e.Advance, e.Balance, now, now})
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"employees"},
			[]string{"commerce_id", "name", "role", "salary", "advance", "balance", "created_at", "updated_at"},
			pgx.CopyFromRows(employees))
		if err != nil {
			return fmt.Errorf("copy employees: %w", err)
		}
		result.Employees = int(n)

		expenseRows := make([][]any, 0, len(snap.Expenses))
		for _, e := range snap.Expenses {
			expenseRows = append(expenseRows, []any{commerceID, e.Description, e.Category, e.Amount, e.SpentOn, now})
		}
		n, err = tx.CopyFrom(ctx, pgx.Identifier{"expenses"},
			[]string{"commerce_id", "description", "category", "amount", "spent_on", "created_at"},
			pgx.CopyFromRows(expenseRows))
		if err != nil {
			return fmt.Errorf("copy expenses: %w", err)
		}
		result.Expenses = int(n)

		if err := insertOrders(ctx, tx, commerceID, snap, productIDs, clientIDs); err != nil {
			return err
		}
		result.Products = len(productIDs)
		result.Clients = len(clientIDs)
		result.Orders = len(snap.Orders)

		if audit.Meta == nil {
			audit.Meta = map[string]any{}
		}
		audit.Meta["rows"] = result
		return shared.RecordAudit(ctx, tx, audit)
	})
	return result, err
}

func insertProducts(ctx context.Context, tx pgx.Tx, commerceID int64, snap Snapshot) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(snap.Products))
	batch := &pgx.Batch{}
	for _, p := range snap.Products {
		batch.Queue(`INSERT INTO products (commerce_id, name, price, stock, category, icon) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			commerceID, p.Name, p.Price, p.Stock, p.Category, p.Icon)
	}
	results := tx.SendBatch(ctx, batch)
	for _, p := range snap.Products {
		var id int64
		if err := results.QueryRow().Scan(&id); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert product %q: %w", p.Name, err)
		}
		ids[p.ID] = id
	}
	return ids, results.Close()
}

func insertClients(ctx context.Context, tx pgx.Tx, commerceID int64, snap Snapshot) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(snap.Clients))
	batch := &pgx.Batch{}
	for _, c := range snap.Clients {
		batch.Queue(`INSERT INTO clients (commerce_id, name, phone, email, address, credit, is_vip) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			commerceID, c.Name, c.Phone, c.Email, c.Address, c.Credit, c.IsVIP)
	}
	results := tx.SendBatch(ctx, batch)
	for _, c := range snap.Clients {
		var id int64
		if err := results.QueryRow().Scan(&id); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert client %q: %w", c.Name, err)
		}
		ids[c.ID] = id
	}
	return ids, results.Close()
}

func insertOrders(ctx context.Context, tx pgx.Tx, commerceID int64, snap Snapshot, productIDs, clientIDs map[int64]int64) error {
	for _, o := range snap.Orders {
		var clientID *int64
		if o.ClientID != nil {
			if mapped, ok := clientIDs[*o.ClientID]; ok {
				clientID = &mapped
			}
		}
		createdAt := o.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		var orderID int64
		err := tx.QueryRow(ctx, `INSERT INTO orders (commerce_id, cashier_id, client_id, client_name, tax_enabled, subtotal, tax, total, tendered, change_due, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
			commerceID, o.CashierID, clientID, o.ClientName, o.TaxEnabled, o.Subtotal, o.Tax, o.Total, o.Tendered, o.ChangeDue, createdAt).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		rows := make([][]any, 0, len(o.Lines))
		for i, line := range o.Lines {
			productID := line.ProductID
			if mapped, ok := productIDs[productID]; ok {
				productID = mapped
			}
			rows = append(rows, []any{orderID, productID, line.Name, line.Price, line.Quantity, i})
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"order_lines"},
			[]string{"order_id", "product_id", "name", "price", "quantity", "line_order"},
			pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy order lines: %w", err)
		}
	}
	return nil
}
