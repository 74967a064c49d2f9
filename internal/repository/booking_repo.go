package repository

import (
	"context"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, class_id, user_id, status, created_at, updated_at`

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID,
		&booking.ClassID,
		&booking.UserID,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &booking, nil
}

// Create inserts a booked row. A second row for the same (class, user) pair is
// rejected by the unique constraint and surfaces as ErrConflict.
func (r *BookingRepository) Create(ctx context.Context, classID, userID models.ID) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (class_id, user_id, status)
		VALUES ($1, $2, 'booked')
		RETURNING ` + bookingColumns
	return scanBooking(r.db.QueryRow(ctx, query, classID, userID))
}

func (r *BookingRepository) GetByID(ctx context.Context, id models.ID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRow(ctx, query, id))
}

func (r *BookingRepository) GetByClassAndUser(ctx context.Context, classID, userID models.ID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE class_id = $1 AND user_id = $2`
	return scanBooking(r.db.QueryRow(ctx, query, classID, userID))
}

// CountByClass counts bookings of the given status; an empty status counts every row.
func (r *BookingRepository) CountByClass(ctx context.Context, classID models.ID, status string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE class_id = $1 AND ($2 = '' OR status = $2)`
	var count int
	if err := r.db.QueryRow(ctx, query, classID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id models.ID,
	currentStatus string,
	nextStatus string,
) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns
	return scanBooking(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus))
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID models.ID, status string) ([]models.Booking, error) {
	query := `
		SELECT b.id, b.class_id, b.user_id, b.status, b.created_at, b.updated_at
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.user_id = $1 AND ($2 = '' OR b.status = $2)
		ORDER BY c.start_time ASC, b.id ASC
	`
	return r.list(ctx, query, userID, status)
}

func (r *BookingRepository) ListByClass(ctx context.Context, classID models.ID) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE class_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, classID)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
