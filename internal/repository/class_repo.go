package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

const classColumns = `id, title, start_time, end_time, capacity, trainer_id, branch_id, created_at, updated_at`

type ClassRepository struct {
	db DBTX
}

func NewClassRepository(db DBTX) *ClassRepository {
	return &ClassRepository{db: db}
}

func scanClass(row pgx.Row) (*models.Class, error) {
	var class models.Class
	err := row.Scan(
		&class.ID,
		&class.Title,
		&class.StartTime,
		&class.EndTime,
		&class.Capacity,
		&class.TrainerID,
		&class.BranchID,
		&class.CreatedAt,
		&class.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &class, nil
}

func (r *ClassRepository) Create(ctx context.Context, input CreateClassInput) (*models.Class, error) {
	query := `
		INSERT INTO classes (title, start_time, end_time, capacity, trainer_id, branch_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + classColumns
	return scanClass(r.db.QueryRow(
		ctx,
		query,
		input.Title,
		input.StartTime,
		input.EndTime,
		input.Capacity,
		input.TrainerID,
		input.BranchID,
	))
}

func (r *ClassRepository) GetByID(ctx context.Context, id models.ID) (*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`
	return scanClass(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUpdate holds the class row lock until the transaction ends, which
// serialises every booking against the same class.
func (r *ClassRepository) GetByIDForUpdate(ctx context.Context, id models.ID) (*models.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1 FOR UPDATE`
	return scanClass(r.db.QueryRow(ctx, query, id))
}

func (r *ClassRepository) Update(ctx context.Context, class *models.Class) (*models.Class, error) {
	query := `
		UPDATE classes
		SET title = $2, start_time = $3, end_time = $4, capacity = $5,
		    trainer_id = $6, branch_id = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + classColumns
	return scanClass(r.db.QueryRow(
		ctx,
		query,
		class.ID,
		class.Title,
		class.StartTime,
		class.EndTime,
		class.Capacity,
		class.TrainerID,
		class.BranchID,
	))
}

func (r *ClassRepository) Delete(ctx context.Context, id models.ID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ClassRepository) List(ctx context.Context, filter ClassListFilter) ([]models.Class, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.From != nil {
		args = append(args, filter.From.UTC())
		whereParts = append(whereParts, fmt.Sprintf("end_time > $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		whereParts = append(whereParts, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if filter.TrainerID > 0 {
		args = append(args, filter.TrainerID)
		whereParts = append(whereParts, fmt.Sprintf("trainer_id = $%d", len(args)))
	}
	if filter.BranchID > 0 {
		args = append(args, filter.BranchID)
		whereParts = append(whereParts, fmt.Sprintf("branch_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM classes
		WHERE %s
		ORDER BY start_time ASC, id ASC
	`, classColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := make([]models.Class, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *class)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}

// LockTrainer takes a transaction-scoped advisory lock so that two concurrent
// writers cannot both pass the conflict check for the same trainer.
func (r *ClassRepository) LockTrainer(ctx context.Context, trainerID models.ID) error {
	_, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(trainerID))
	return err
}

func (r *ClassRepository) HasTrainerConflict(
	ctx context.Context,
	trainerID models.ID,
	start time.Time,
	end time.Time,
	excludeClassID models.ID,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM classes
			WHERE trainer_id = $1
			  AND id <> $4
			  AND start_time < $3
			  AND end_time > $2
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, trainerID, start.UTC(), end.UTC(), excludeClassID).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}
