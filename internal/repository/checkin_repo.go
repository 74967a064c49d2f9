package repository

import (
	"context"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const checkinColumns = `id, user_id, branch_id, membership_id, method, status, checked_at`

type CheckinRepository struct {
	db DBTX
}

func NewCheckinRepository(db DBTX) *CheckinRepository {
	return &CheckinRepository{db: db}
}

func scanCheckin(row pgx.Row) (*models.Checkin, error) {
	var checkin models.Checkin
	err := row.Scan(
		&checkin.ID,
		&checkin.UserID,
		&checkin.BranchID,
		&checkin.MembershipID,
		&checkin.Method,
		&checkin.Status,
		&checkin.CheckedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &checkin, nil
}

func (r *CheckinRepository) Create(ctx context.Context, input CreateCheckinInput) (*models.Checkin, error) {
	query := `
		INSERT INTO checkins (user_id, branch_id, membership_id, method, status, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + checkinColumns
	return scanCheckin(r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.BranchID,
		input.MembershipID,
		input.Method,
		input.Status,
		input.CheckedAt.UTC(),
	))
}

func (r *CheckinRepository) ListByUser(
	ctx context.Context,
	userID models.ID,
	limit int,
	offset int,
) ([]models.Checkin, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM checkins WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+checkinColumns+`
		FROM checkins
		WHERE user_id = $1
		ORDER BY checked_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	checkins := make([]models.Checkin, 0)
	for rows.Next() {
		checkin, err := scanCheckin(rows)
		if err != nil {
			return nil, 0, err
		}
		checkins = append(checkins, *checkin)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return checkins, total, nil
}
