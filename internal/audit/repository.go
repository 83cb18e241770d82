package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
)

// Repository reads audit_logs.
type Repository interface {
	// Window returns up to limit rows after offset, newest first. limit <= 0 means no limit.
	Window(ctx context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error)
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx backed Repository.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

func (r *repository) Window(ctx context.Context, f TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if !f.From.IsZero() {
		where = append(where, "a.occurred_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "a.occurred_at < "+arg(f.To))
	}
	if f.Actor != "" {
		where = append(where, "u.email ILIKE "+arg("%"+f.Actor+"%"))
	}
	if f.Entity != "" {
		where = append(where, "a.entity = "+arg(f.Entity))
	}
	if f.Action != "" {
		where = append(where, "a.action = "+arg(f.Action))
	}
	if f.CommerceID > 0 {
		where = append(where, "a.meta->>'commerce_id' = "+arg(strconv.FormatInt(f.CommerceID, 10)))
	}

	query := `SELECT a.occurred_at, a.actor_id, COALESCE(u.email, ''), a.action, a.entity, a.entity_id, a.meta
FROM audit_logs a LEFT JOIN users u ON u.id = a.actor_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.occurred_at DESC, a.id DESC"
	if limit > 0 {
		query += " LIMIT " + arg(limit)
	}
	if offset > 0 {
		query += " OFFSET " + arg(offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TimelineRow, error) {
		var (
			tr   TimelineRow
			meta []byte
		)
		if err := row.Scan(&tr.At, &tr.ActorID, &tr.Actor, &tr.Action, &tr.Entity, &tr.EntityID, &meta); err != nil {
			return TimelineRow{}, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &tr.Meta); err != nil {
				return TimelineRow{}, err
			}
		}
		return tr, nil
	})
}
