package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Repository persists staff accounts.
type Repository interface {
	List(ctx context.Context, commerceID int64) ([]User, error)
	Get(ctx context.Context, commerceID, id int64) (User, error)
	Create(ctx context.Context, user User, passwordHash string) (User, error)
	// Update stores the mutable fields. An empty passwordHash keeps the current one.
	Update(ctx context.Context, user User, passwordHash string) (User, error)
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx backed Repository.
func NewRepository(q db.Querier) Repository {
	return &repository{db: q}
}

const userColumns = `id, email, name, role, commerce_id, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, commerceID int64) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE commerce_id = $1 ORDER BY name ASC, id ASC`, commerceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		return scanUser(row)
	})
}

func (r *repository) Get(ctx context.Context, commerceID, id int64) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE commerce_id = $1 AND id = $2`, commerceID, id))
	if db.IsNoRows(err) {
		return User{}, fmt.Errorf("user %d: %w", id, httpx.ErrNotFound)
	}
	return u, err
}

func (r *repository) Create(ctx context.Context, user User, passwordHash string) (User, error) {
	now := time.Now().UTC()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := r.db.QueryRow(ctx, `INSERT INTO users (email, password_hash, name, role, commerce_id, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		user.Email, passwordHash, user.Name, user.Role, user.CommerceID, user.IsActive, now).Scan(&user.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("email %s: %w", user.Email, httpx.ErrDuplicate)
		}
		return User{}, err
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

func (r *repository) Update(ctx context.Context, user User, passwordHash string) (User, error) {
	user.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, `UPDATE users SET name = $3, role = $4, is_active = $5,
password_hash = COALESCE(NULLIF($6, ''), password_hash), updated_at = $7
WHERE commerce_id = $1 AND id = $2`,
		user.CommerceID, user.ID, user.Name, user.Role, user.IsActive, passwordHash, user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	if tag.RowsAffected() == 0 {
		return User{}, fmt.Errorf("user %d: %w", user.ID, httpx.ErrNotFound)
	}
	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CommerceID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
