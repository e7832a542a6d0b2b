package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/medscan/medscan-golang/internal/models"
)

type mysqlNotifications struct {
	s *mysqlStore
}

const notificationColumns = `id, user_id, order_id, type, title, message, status, previous_status, is_read, read_at, meta_order_number, meta_item_count, meta_total_amount, created_at`

func scanNotification(row interface{ Scan(dest ...any) error }, n *models.Notification) error {
	var previousStatus sql.NullString
	var readAt sql.NullTime

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.OrderID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Status,
		&previousStatus,
		&n.IsRead,
		&readAt,
		&n.Metadata.OrderNumber,
		&n.Metadata.ItemCount,
		&n.Metadata.TotalAmount,
		&n.CreatedAt,
	)
	if err != nil {
		return err
	}
	if previousStatus.Valid {
		n.PreviousStatus = models.OrderStatus(previousStatus.String)
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return nil
}

func (r *mysqlNotifications) Create(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now()

	var previousStatus sql.NullString
	if n.PreviousStatus != "" {
		previousStatus = sql.NullString{String: string(n.PreviousStatus), Valid: true}
	}

	query := `
		INSERT INTO notifications
		(user_id, order_id, type, title, message, status, previous_status, is_read, read_at, meta_order_number, meta_item_count, meta_total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?, ?, ?)`

	result, err := r.s.q(ctx).ExecContext(ctx, query,
		n.UserID, n.OrderID, n.Type, n.Title, n.Message, n.Status, previousStatus,
		n.Metadata.OrderNumber, n.Metadata.ItemCount, n.Metadata.TotalAmount, n.CreatedAt)
	if err != nil {
		return err
	}
	n.ID, err = result.LastInsertId()
	return err
}

func (r *mysqlNotifications) ListByUser(ctx context.Context, userID int64, f NotificationFilter) ([]models.Notification, int, error) {
	q := r.s.q(ctx)

	where := "user_id = ?"
	args := []any{userID}
	switch f.Filter {
	case "unread":
		where += " AND is_read = 0"
	case "read":
		where += " AND is_read = 1"
	}

	var total int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.QueryContext(ctx, query, append(args, f.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := scanNotification(rows, &n); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *mysqlNotifications) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	return count, err
}

func (r *mysqlNotifications) MarkRead(ctx context.Context, id, userID int64) (*models.Notification, error) {
	q := r.s.q(ctx)

	// The ownership predicate doubles as the access check: updating another
	// user's notification affects zero rows and reads as not-found.
	result, err := q.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, read_at = ? WHERE id = ? AND user_id = ? AND is_read = 0`,
		time.Now(), id, userID)
	if err != nil {
		return nil, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		// Distinguish "already read" from "not yours": re-reading below
		// settles it either way.
		var n models.Notification
		err := scanNotification(q.QueryRowContext(ctx,
			`SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND user_id = ?`, id, userID), &n)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &n, nil
	}

	var n models.Notification
	err = scanNotification(q.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id), &n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *mysqlNotifications) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result, err := r.s.q(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, read_at = ? WHERE user_id = ? AND is_read = 0`,
		time.Now(), userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *mysqlNotifications) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.s.q(ctx).ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
