package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/services"
)

type MembershipHandler struct {
	service membershipApplicationService
}

type membershipApplicationService interface {
	Create(ctx context.Context, input services.CreateMembershipInput) (*models.Membership, error)
	Extend(ctx context.Context, id models.ID, input services.ExtendMembershipInput) (*models.Membership, error)
	Pause(ctx context.Context, id models.ID) (*models.Membership, error)
	Resume(ctx context.Context, id models.ID) (*models.Membership, error)
	Get(ctx context.Context, actorID models.ID, role string, id models.ID) (*models.Membership, error)
	ListForUser(ctx context.Context, userID models.ID) ([]models.Membership, error)
}

func NewMembershipHandler(service *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{service: service}
}

type createMembershipRequest struct {
	UserID    models.ID `json:"user_id" validate:"required,gt=0"`
	PlanID    models.ID `json:"plan_id" validate:"required,gt=0"`
	StartDate string    `json:"start_date"`
}

type extendMembershipRequest struct {
	AdditionalDays     *int `json:"additional_days" validate:"omitempty,gte=0"`
	AdditionalSessions *int `json:"additional_sessions" validate:"omitempty,gte=0"`
}

func (h *MembershipHandler) CreateMembership(c *fiber.Ctx) error {
	var req createMembershipRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	startDate, err := parseOptionalTime(req.StartDate)
	if err != nil {
		return badRequest(c, "start_date must be a valid RFC3339 timestamp")
	}

	membership, err := h.service.Create(c.UserContext(), services.CreateMembershipInput{
		UserID:    req.UserID,
		PlanID:    req.PlanID,
		StartDate: startDate,
	})
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"membership": membership})
}

func (h *MembershipHandler) ExtendMembership(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid membership id")
	}

	var req extendMembershipRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	membership, err := h.service.Extend(c.UserContext(), id, services.ExtendMembershipInput{
		AdditionalDays:     req.AdditionalDays,
		AdditionalSessions: req.AdditionalSessions,
	})
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"membership": membership})
}

func (h *MembershipHandler) PauseMembership(c *fiber.Ctx) error {
	return h.transition(c, h.service.Pause)
}

func (h *MembershipHandler) ResumeMembership(c *fiber.Ctx) error {
	return h.transition(c, h.service.Resume)
}

func (h *MembershipHandler) transition(c *fiber.Ctx, apply func(context.Context, models.ID) (*models.Membership, error)) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid membership id")
	}

	membership, err := apply(c.UserContext(), id)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"membership": membership})
}

// ListMemberships returns the caller's memberships. Staff may pass ?user_id=
// to look at a member.
func (h *MembershipHandler) ListMemberships(c *fiber.Ctx) error {
	userID, role, err := principal(c)
	if err != nil {
		return unauthenticated(c)
	}

	target := userID
	if raw := c.Query("user_id"); raw != "" {
		requested, err := parseIDQuery(raw)
		if err != nil {
			return badRequest(c, "Invalid user_id")
		}
		if requested != userID && role != services.RoleStaff {
			return mapDomainError(c, services.ErrForbidden)
		}
		target = requested
	}

	memberships, err := h.service.ListForUser(c.UserContext(), target)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"memberships": memberships})
}

func (h *MembershipHandler) GetMembership(c *fiber.Ctx) error {
	userID, role, err := principal(c)
	if err != nil {
		return unauthenticated(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid membership id")
	}

	membership, err := h.service.Get(c.UserContext(), userID, role, id)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"membership": membership})
}
