package repos

import (
	"time"

	"chidi/internal/domain"

	"github.com/jmoiron/sqlx"
)

type NotificationRepo struct{ db *sqlx.DB }

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// notificationRow stores CreatedAt as unix millis.
type notificationRow struct {
	domain.Notification
	CreatedMS int64 `db:"created_ms"`
}

// List returns the feed newest first.
func (r *NotificationRepo) List() ([]domain.Notification, error) {
	var rows []notificationRow
	if err := r.db.Select(&rows, `
		SELECT id, type, title, message, timestamp, is_read, priority, product_id, created_ms
		FROM notifications
		ORDER BY created_ms DESC, rowid DESC
	`); err != nil {
		return nil, err
	}
	out := make([]domain.Notification, len(rows))
	for i, row := range rows {
		n := row.Notification
		n.CreatedAt = time.UnixMilli(row.CreatedMS)
		out[i] = n
	}
	return out, nil
}

func (r *NotificationRepo) Insert(ext sqlx.Ext, n domain.Notification) error {
	_, err := sqlx.NamedExec(ext, `
	  INSERT INTO notifications(id, type, title, message, timestamp, is_read, priority, product_id, created_ms)
	  VALUES(:id, :type, :title, :message, :timestamp, :is_read, :priority, :product_id, :created_ms)
	`, notificationRow{Notification: n, CreatedMS: n.CreatedAt.UnixMilli()})
	return err
}

func (r *NotificationRepo) MarkRead(ext sqlx.Ext, id string) error {
	_, err := ext.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	return err
}

func (r *NotificationRepo) MarkAllRead(ext sqlx.Ext) error {
	_, err := ext.Exec(`UPDATE notifications SET is_read = 1 WHERE is_read = 0`)
	return err
}

func (r *NotificationRepo) Delete(ext sqlx.Ext, id string) error {
	_, err := ext.Exec(`DELETE FROM notifications WHERE id = ?`, id)
	return err
}

func (r *NotificationRepo) DeleteAll(ext sqlx.Ext) error {
	_, err := ext.Exec(`DELETE FROM notifications`)
	return err
}

// DeleteStockFor removes the stock alerts raised for the given products.
func (r *NotificationRepo) DeleteStockFor(ext sqlx.Ext, productIDs []int) error {
	if len(productIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM notifications WHERE type = ? AND product_id IN (?)`, string(domain.NotifyStock), productIDs)
	if err != nil {
		return err
	}
	_, err = ext.Exec(ext.Rebind(query), args...)
	return err
}
