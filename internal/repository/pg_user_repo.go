package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

type pgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgUserRepository returns a UserRepository backed by PostgreSQL.
func NewPgUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepository{pool: pool}
}

func (r *pgUserRepository) Create(ctx context.Context, u *domain.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		u.Email, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err := row.Scan(&u.ID); err != nil {
		if strings.Contains(err.Error(), "users_email_key") {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *pgUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, is_active, created_at, updated_at
		FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return u, err
}

func (r *pgUserRepository) List(ctx context.Context, page, limit int) ([]*domain.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, is_active, created_at, updated_at
		FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	return users, total, err
}

func (r *pgUserRepository) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET email = $1, is_active = $2, updated_at = NOW()
		WHERE id = $3`,
		u.Email, u.IsActive, u.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") {
			return domain.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) Subscribe(ctx context.Context, userID, checkID int64) (*domain.Subscription, error) {
	sub := &domain.Subscription{UserID: userID, CheckID: checkID}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, check_id)
		VALUES ($1,$2)
		RETURNING id, created_at`,
		userID, checkID,
	)
	if err := row.Scan(&sub.ID, &sub.CreatedAt); err != nil {
		switch {
		case strings.Contains(err.Error(), "subscriptions_user_id_check_id_key"):
			return nil, domain.ErrSubscriptionExists
		case strings.Contains(err.Error(), "foreign key"):
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	return sub, nil
}

func (r *pgUserRepository) Unsubscribe(ctx context.Context, subscriptionID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, subscriptionID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) ListSubscriptionsByCheck(ctx context.Context, checkID int64) ([]*domain.Subscription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, check_id, created_at
		FROM subscriptions WHERE check_id = $1 ORDER BY id`, checkID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.CheckID, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}

func (r *pgUserRepository) ListRecipientsByCheck(ctx context.Context, checkID int64) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.is_active, u.created_at, u.updated_at
		FROM users u
		JOIN subscriptions s ON s.user_id = u.id
		WHERE s.check_id = $1 AND u.is_active
		ORDER BY u.id`, checkID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ---- helpers ----

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUsers(rows pgx.Rows) ([]*domain.User, error) {
	var result []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
