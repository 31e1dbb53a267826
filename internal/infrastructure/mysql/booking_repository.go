package mysql

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLBookingRepository struct {
	db *sql.DB
}

func NewMySQLBookingRepository(db *sql.DB) *MySQLBookingRepository {
	return &MySQLBookingRepository{db: db}
}

// GetAffectedUsers returns the booking's owner plus every staff watcher,
// deduplicated by the UNION. An unknown booking yields an empty set, which
// callers treat as "nobody to notify".
func (r *MySQLBookingRepository) GetAffectedUsers(ctx context.Context, bookingID string) ([]string, error) {
	query := `
        SELECT user_id FROM bookings WHERE id = ?
        UNION
        SELECT user_id FROM booking_watchers WHERE booking_id = ?
    `

	rows, err := r.db.QueryContext(ctx, query, bookingID, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		users = append(users, userID)
	}

	return users, rows.Err()
}
