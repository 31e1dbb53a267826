package mysql

import (
	"context"
	"database/sql"
	"time"

	"travel-system/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLNotificationRepository struct {
	db *sql.DB
}

func NewMySQLNotificationRepository(db *sql.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{db: db}
}

func (r *MySQLNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
        INSERT INTO notifications (id, user_id, type, message, is_read, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Message, n.Read, n.CreatedAt)
	return err
}

// MarkRead scopes the update to the owning user so one client cannot mark
// another user's notifications. A miss is not an error.
func (r *MySQLNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	query := `UPDATE notifications SET is_read = TRUE, updated_at = ? WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now(), notificationID, userID)
	return err
}
