package repository

import (
	"context"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const membershipColumns = `id, user_id, plan_id, start_date, end_date, remaining_sessions, status, created_at, updated_at`

type MembershipRepository struct {
	db DBTX
}

func NewMembershipRepository(db DBTX) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func scanMembership(row pgx.Row) (*models.Membership, error) {
	var membership models.Membership
	err := row.Scan(
		&membership.ID,
		&membership.UserID,
		&membership.PlanID,
		&membership.StartDate,
		&membership.EndDate,
		&membership.RemainingSessions,
		&membership.Status,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &membership, nil
}

// selectionOrder maps a selection policy onto a fixed ORDER BY clause.
func selectionOrder(order models.MembershipSelection) string {
	if order == models.SelectSoonestExpiring {
		return "end_date ASC, id ASC"
	}
	return "end_date DESC, id ASC"
}

func (r *MembershipRepository) Create(ctx context.Context, input CreateMembershipInput) (*models.Membership, error) {
	query := `
		INSERT INTO memberships (user_id, plan_id, start_date, end_date, remaining_sessions, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + membershipColumns
	return scanMembership(r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.PlanID,
		input.StartDate.UTC(),
		input.EndDate.UTC(),
		input.RemainingSessions,
		input.Status,
	))
}

func (r *MembershipRepository) GetByID(ctx context.Context, id models.ID) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`
	return scanMembership(r.db.QueryRow(ctx, query, id))
}

func (r *MembershipRepository) GetByIDForUpdate(ctx context.Context, id models.ID) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1 FOR UPDATE`
	return scanMembership(r.db.QueryRow(ctx, query, id))
}

func (r *MembershipRepository) FindUsable(
	ctx context.Context,
	userID models.ID,
	now time.Time,
	order models.MembershipSelection,
) (*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1
		  AND status = 'active'
		  AND end_date >= $2
		  AND remaining_sessions > 0
		ORDER BY ` + selectionOrder(order) + `
		LIMIT 1
	`
	return scanMembership(r.db.QueryRow(ctx, query, userID, now.UTC()))
}

// FindUsableForUpdate is FindUsable with the chosen row locked. A concurrent
// check-in waiting on the lock re-evaluates the predicate once it is released,
// so it cannot pick a membership that has just been drained.
func (r *MembershipRepository) FindUsableForUpdate(
	ctx context.Context,
	userID models.ID,
	now time.Time,
	order models.MembershipSelection,
) (*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1
		  AND status = 'active'
		  AND end_date >= $2
		  AND remaining_sessions > 0
		ORDER BY ` + selectionOrder(order) + `
		LIMIT 1
		FOR UPDATE
	`
	return scanMembership(r.db.QueryRow(ctx, query, userID, now.UTC()))
}

// DecrementSession consumes one session. It returns ErrNotFound when the floor
// guard rejects the update.
func (r *MembershipRepository) DecrementSession(ctx context.Context, id models.ID) (*models.Membership, error) {
	query := `
		UPDATE memberships
		SET remaining_sessions = remaining_sessions - 1, updated_at = NOW()
		WHERE id = $1 AND remaining_sessions > 0
		RETURNING ` + membershipColumns
	return scanMembership(r.db.QueryRow(ctx, query, id))
}

func (r *MembershipRepository) Update(
	ctx context.Context,
	id models.ID,
	input UpdateMembershipInput,
) (*models.Membership, error) {
	query := `
		UPDATE memberships
		SET end_date = $2, remaining_sessions = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + membershipColumns
	return scanMembership(r.db.QueryRow(ctx, query, id, input.EndDate.UTC(), input.RemainingSessions, input.Status))
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID models.ID) ([]models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1
		ORDER BY end_date DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]models.Membership, 0)
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, *membership)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ExpireLapsed marks active memberships whose end date has passed. The guard is
// re-checked on each locked row, so a concurrent extend that moved the end date
// forward wins.
func (r *MembershipRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE memberships
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date < $1
	`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
