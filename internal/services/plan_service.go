package services

import (
	"context"
	"errors"
	"strings"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

type PlanService struct {
	tx repository.Transactor
}

func NewPlanService(tx repository.Transactor) *PlanService {
	return &PlanService{tx: tx}
}

type CreatePlanInput struct {
	Name         string
	Price        float64
	DurationDays int
	Sessions     int
}

func (s *PlanService) CreatePlan(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, invalidf("name is required")
	}
	if input.Price < 0 {
		return nil, invalidf("price must not be negative")
	}
	if input.DurationDays <= 0 || input.Sessions <= 0 {
		return nil, invalidf("duration_days and sessions must be positive")
	}

	var plan *models.Plan
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		var err error
		plan, err = st.Plans.Create(ctx, repository.CreatePlanInput{
			Name:         input.Name,
			Price:        input.Price,
			DurationDays: input.DurationDays,
			Sessions:     input.Sessions,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	var plans []models.Plan
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		var err error
		plans, err = st.Plans.List(ctx, activeOnly)
		return err
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// SetPlanActive retires or reinstates a plan. Existing memberships are unaffected.
func (s *PlanService) SetPlanActive(ctx context.Context, id models.ID, active bool) (*models.Plan, error) {
	var plan *models.Plan
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		var err error
		plan, err = st.Plans.SetActive(ctx, id, active)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
