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

const checkColumns = `id, name, api_key, report_path, email_subject, email_body,
		       schedule, enabled, created_at, updated_at`

type pgCheckRepository struct {
	pool *pgxpool.Pool
}

// NewPgCheckRepository returns a CheckRepository backed by PostgreSQL.
func NewPgCheckRepository(pool *pgxpool.Pool) CheckRepository {
	return &pgCheckRepository{pool: pool}
}

func (r *pgCheckRepository) Create(ctx context.Context, c *domain.Check) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO checks
			(name, api_key, report_path, email_subject, email_body, schedule, enabled, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		c.Name, c.APIKey, c.ReportPath, c.EmailSubject, c.EmailBody,
		c.Schedule, c.Enabled, c.CreatedAt, c.UpdatedAt,
	)
	if err := row.Scan(&c.ID); err != nil {
		if strings.Contains(err.Error(), "checks_name_key") {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

func (r *pgCheckRepository) GetByID(ctx context.Context, id int64) (*domain.Check, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+checkColumns+` FROM checks WHERE id = $1`, id)

	c, err := scanCheck(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

func (r *pgCheckRepository) GetByName(ctx context.Context, name string) (*domain.Check, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+checkColumns+` FROM checks WHERE name = $1`, name)

	c, err := scanCheck(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

func (r *pgCheckRepository) List(ctx context.Context, page, limit int) ([]*domain.Check, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM checks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count checks: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+checkColumns+` FROM checks ORDER BY id LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	checks, err := scanChecks(rows)
	return checks, total, err
}

func (r *pgCheckRepository) Update(ctx context.Context, c *domain.Check) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE checks
		SET api_key = $1, report_path = $2, email_subject = $3, email_body = $4,
		    schedule = $5, enabled = $6, updated_at = NOW()
		WHERE id = $7`,
		c.APIKey, c.ReportPath, c.EmailSubject, c.EmailBody, c.Schedule, c.Enabled, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgCheckRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM checks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgCheckRepository) ListScheduled(ctx context.Context) ([]*domain.Check, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+checkColumns+` FROM checks
		 WHERE enabled AND schedule IS NOT NULL AND schedule <> ''
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list scheduled checks: %w", err)
	}
	defer rows.Close()
	return scanChecks(rows)
}

// ---- helpers ----

func scanCheck(row pgx.Row) (*domain.Check, error) {
	var c domain.Check
	err := row.Scan(
		&c.ID, &c.Name, &c.APIKey, &c.ReportPath, &c.EmailSubject, &c.EmailBody,
		&c.Schedule, &c.Enabled, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanChecks(rows pgx.Rows) ([]*domain.Check, error) {
	var result []*domain.Check
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
