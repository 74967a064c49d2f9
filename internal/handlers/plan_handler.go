package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/services"
)

type PlanHandler struct {
	service planApplicationService
}

type planApplicationService interface {
	CreatePlan(ctx context.Context, input services.CreatePlanInput) (*models.Plan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error)
	SetPlanActive(ctx context.Context, id models.ID, active bool) (*models.Plan, error)
}

func NewPlanHandler(service *services.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

type createPlanRequest struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Price        float64 `json:"price" validate:"gte=0"`
	DurationDays int     `json:"duration_days" validate:"required,gt=0"`
	Sessions     int     `json:"sessions" validate:"required,gt=0"`
}

type setPlanActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *PlanHandler) CreatePlan(c *fiber.Ctx) error {
	var req createPlanRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	plan, err := h.service.CreatePlan(c.UserContext(), services.CreatePlanInput{
		Name:         req.Name,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		Sessions:     req.Sessions,
	})
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

// ListPlans shows members the plans on sale; staff also see retired ones
// unless they ask for ?active=true.
func (h *PlanHandler) ListPlans(c *fiber.Ctx) error {
	_, role, err := principal(c)
	if err != nil {
		return unauthenticated(c)
	}

	activeOnly := role != services.RoleStaff || c.Query("active") == "true"
	plans, err := h.service.ListPlans(c.UserContext(), activeOnly)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"plans": plans})
}

func (h *PlanHandler) SetPlanActive(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid plan id")
	}

	var req setPlanActiveRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	plan, err := h.service.SetPlanActive(c.UserContext(), id, *req.Active)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"plan": plan})
}
