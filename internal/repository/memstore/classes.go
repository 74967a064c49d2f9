package memstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

var errClassReferenced = errors.New("memstore: class is referenced by bookings")

type classRepo struct {
	st    *state
	clock clock.Clock
}

func (r *classRepo) Create(_ context.Context, input repository.CreateClassInput) (*models.Class, error) {
	now := r.clock.Now()
	class := models.Class{
		ID:        r.st.nextID(),
		Title:     input.Title,
		StartTime: input.StartTime.UTC(),
		EndTime:   input.EndTime.UTC(),
		Capacity:  input.Capacity,
		TrainerID: input.TrainerID,
		BranchID:  input.BranchID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.st.classes[class.ID] = class
	return &class, nil
}

func (r *classRepo) GetByID(_ context.Context, id models.ID) (*models.Class, error) {
	class, ok := r.st.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &class, nil
}

func (r *classRepo) GetByIDForUpdate(ctx context.Context, id models.ID) (*models.Class, error) {
	return r.GetByID(ctx, id)
}

func (r *classRepo) Update(_ context.Context, class *models.Class) (*models.Class, error) {
	existing, ok := r.st.classes[class.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	updated := *class
	updated.StartTime = updated.StartTime.UTC()
	updated.EndTime = updated.EndTime.UTC()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.clock.Now()
	r.st.classes[class.ID] = updated
	return &updated, nil
}

func (r *classRepo) Delete(_ context.Context, id models.ID) error {
	if _, ok := r.st.classes[id]; !ok {
		return repository.ErrNotFound
	}
	for _, booking := range r.st.bookings {
		if booking.ClassID == id {
			return errClassReferenced
		}
	}
	delete(r.st.classes, id)
	return nil
}

func (r *classRepo) List(_ context.Context, filter repository.ClassListFilter) ([]models.Class, error) {
	classes := make([]models.Class, 0)
	for _, class := range r.st.classes {
		if filter.From != nil && !class.EndTime.After(*filter.From) {
			continue
		}
		if filter.To != nil && !class.StartTime.Before(*filter.To) {
			continue
		}
		if filter.TrainerID > 0 && class.TrainerID != filter.TrainerID {
			continue
		}
		if filter.BranchID > 0 && class.BranchID != filter.BranchID {
			continue
		}
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool {
		if !classes[i].StartTime.Equal(classes[j].StartTime) {
			return classes[i].StartTime.Before(classes[j].StartTime)
		}
		return classes[i].ID < classes[j].ID
	})
	return classes, nil
}

// LockTrainer is a no-op: transactions are already serialised.
func (r *classRepo) LockTrainer(context.Context, models.ID) error {
	return nil
}

func (r *classRepo) HasTrainerConflict(
	_ context.Context,
	trainerID models.ID,
	start time.Time,
	end time.Time,
	excludeClassID models.ID,
) (bool, error) {
	for _, class := range r.st.classes {
		if class.TrainerID != trainerID || class.ID == excludeClassID {
			continue
		}
		if models.Overlaps(class.StartTime, class.EndTime, start, end) {
			return true, nil
		}
	}
	return false, nil
}
