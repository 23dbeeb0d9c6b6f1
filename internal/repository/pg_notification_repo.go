package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

const notificationColumns = `id, job_id, check_id, check_name, barcode, title,
		       outcome, priority, status, body_addendum,
		       report_container, report_blob, email_blob,
		       retry_count, max_retries, next_retry_at, sent_at,
		       error_message, created_at, updated_at`

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
			(id, job_id, check_id, check_name, barcode, title,
			 outcome, priority, status, body_addendum,
			 report_container, report_blob,
			 retry_count, max_retries, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		n.ID, n.JobID, n.CheckID, n.CheckName, n.Barcode, n.Title,
		n.Outcome, n.Priority, n.Status, n.BodyAddendum,
		n.ReportContainer, n.ReportBlob,
		n.RetryCount, n.MaxRetries, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return n, err
}

func (r *pgNotificationRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Notification, int, error) {
	where, args := buildListWhere(f)
	offset := (f.Page - 1) * f.Limit

	// Count total matching rows for pagination metadata.
	var total int
	countQuery := "SELECT COUNT(*) FROM notifications" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	// Append pagination args after the WHERE args.
	args = append(args, f.Limit, offset)
	limitPlaceholder := fmt.Sprintf("$%d", len(args)-1)
	offsetPlaceholder := fmt.Sprintf("$%d", len(args))

	query := fmt.Sprintf(`
		SELECT `+notificationColumns+`
		FROM notifications%s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s`, where, limitPlaceholder, offsetPlaceholder)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications, err := scanNotifications(rows)
	return notifications, total, err
}

func (r *pgNotificationRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (r *pgNotificationRepository) MarkSent(ctx context.Context, id, emailBlob string, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'sent', email_blob = $1, sent_at = $2,
		    error_message = NULL, updated_at = NOW()
		WHERE id = $3`, nullable(emailBlob), sentAt, id)
	return err
}

func (r *pgNotificationRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'failed', error_message = $1, next_retry_at = NULL, updated_at = NOW()
		WHERE id = $2`, errMsg, id)
	return err
}

func (r *pgNotificationRepository) MarkSkipped(ctx context.Context, id, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'skipped', error_message = $1, next_retry_at = NULL, updated_at = NOW()
		WHERE id = $2`, reason, id)
	return err
}

func (r *pgNotificationRepository) ScheduleRetry(ctx context.Context, id string, retryCount int, nextRetry time.Time, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'failed', retry_count = $1, next_retry_at = $2,
		    error_message = $3, updated_at = NOW()
		WHERE id = $4`, retryCount, nextRetry, errMsg, id)
	return err
}

func (r *pgNotificationRepository) Cancel(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = 'cancelled', updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *pgNotificationRepository) FindDueRetries(ctx context.Context) ([]*domain.Notification, error) {
	// Pending rows are ones the notify queue rejected at create time (or a
	// crash hit between insert and enqueue); the grace period avoids racing
	// a create that is still in flight.
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE (status = 'failed'
		       AND retry_count < max_retries
		       AND next_retry_at <= NOW())
		   OR (status = 'pending'
		       AND created_at <= NOW() - INTERVAL '30 seconds')
		LIMIT 500`)
	if err != nil {
		return nil, fmt.Errorf("find due retries: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// ---- helpers ----

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// scanNotification reads a single notification row from any pgx row type.
func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID, &n.JobID, &n.CheckID, &n.CheckName, &n.Barcode, &n.Title,
		&n.Outcome, &n.Priority, &n.Status, &n.BodyAddendum,
		&n.ReportContainer, &n.ReportBlob, &n.EmailBlob,
		&n.RetryCount, &n.MaxRetries, &n.NextRetryAt, &n.SentAt,
		&n.ErrorMessage, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanNotifications(rows pgx.Rows) ([]*domain.Notification, error) {
	var result []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// buildListWhere builds a parameterised WHERE clause from a ListFilter.
func buildListWhere(f domain.ListFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, val any) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.CheckID != nil {
		add("check_id = $%d", *f.CheckID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
