package repository

import (
	"context"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const planColumns = `id, name, price, duration_days, sessions, is_active, created_at`

type PlanRepository struct {
	db DBTX
}

func NewPlanRepository(db DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

func scanPlan(row pgx.Row) (*models.Plan, error) {
	var plan models.Plan
	err := row.Scan(
		&plan.ID,
		&plan.Name,
		&plan.Price,
		&plan.DurationDays,
		&plan.Sessions,
		&plan.IsActive,
		&plan.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &plan, nil
}

func (r *PlanRepository) Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	query := `
		INSERT INTO plans (name, price, duration_days, sessions, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING ` + planColumns
	return scanPlan(r.db.QueryRow(ctx, query, input.Name, input.Price, input.DurationDays, input.Sessions))
}

func (r *PlanRepository) GetByID(ctx context.Context, id models.ID) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	return scanPlan(r.db.QueryRow(ctx, query, id))
}

func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM plans
		WHERE ($1 = FALSE OR is_active)
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PlanRepository) SetActive(ctx context.Context, id models.ID, active bool) (*models.Plan, error) {
	query := `
		UPDATE plans
		SET is_active = $2
		WHERE id = $1
		RETURNING ` + planColumns
	return scanPlan(r.db.QueryRow(ctx, query, id, active))
}
