package memstore

import (
	"context"
	"sort"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

type planRepo struct {
	st    *state
	clock clock.Clock
}

func (r *planRepo) Create(_ context.Context, input repository.CreatePlanInput) (*models.Plan, error) {
	plan := models.Plan{
		ID:           r.st.nextID(),
		Name:         input.Name,
		Price:        input.Price,
		DurationDays: input.DurationDays,
		Sessions:     input.Sessions,
		IsActive:     true,
		CreatedAt:    r.clock.Now(),
	}
	r.st.plans[plan.ID] = plan
	return &plan, nil
}

func (r *planRepo) GetByID(_ context.Context, id models.ID) (*models.Plan, error) {
	plan, ok := r.st.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &plan, nil
}

func (r *planRepo) List(_ context.Context, activeOnly bool) ([]models.Plan, error) {
	plans := make([]models.Plan, 0, len(r.st.plans))
	for _, plan := range r.st.plans {
		if activeOnly && !plan.IsActive {
			continue
		}
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, nil
}

func (r *planRepo) SetActive(_ context.Context, id models.ID, active bool) (*models.Plan, error) {
	plan, ok := r.st.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	plan.IsActive = active
	r.st.plans[id] = plan
	return &plan, nil
}
