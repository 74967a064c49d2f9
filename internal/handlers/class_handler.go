package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/services"
)

type ClassHandler struct {
	service classApplicationService
}

type classApplicationService interface {
	CreateClass(ctx context.Context, input services.CreateClassInput) (*models.Class, error)
	UpdateClass(ctx context.Context, id models.ID, input services.UpdateClassInput) (*models.Class, error)
	DeleteClass(ctx context.Context, id models.ID) error
	GetClass(ctx context.Context, id models.ID) (*models.ClassDetail, error)
	ListClasses(ctx context.Context, input services.ListClassesInput) ([]models.ClassDetail, error)
	ListClassBookings(ctx context.Context, classID models.ID) ([]models.Booking, error)
}

func NewClassHandler(service *services.ClassService) *ClassHandler {
	return &ClassHandler{service: service}
}

type createClassRequest struct {
	Title     string    `json:"title" validate:"required,max=200"`
	StartTime string    `json:"start_time" validate:"required"`
	EndTime   string    `json:"end_time" validate:"required"`
	Capacity  int       `json:"capacity" validate:"required,gt=0"`
	TrainerID models.ID `json:"trainer_id" validate:"required,gt=0"`
	BranchID  models.ID `json:"branch_id" validate:"required,gt=0"`
}

type updateClassRequest struct {
	Title     *string    `json:"title" validate:"omitempty,max=200"`
	StartTime *string    `json:"start_time"`
	EndTime   *string    `json:"end_time"`
	Capacity  *int       `json:"capacity" validate:"omitempty,gt=0"`
	TrainerID *models.ID `json:"trainer_id" validate:"omitempty,gt=0"`
	BranchID  *models.ID `json:"branch_id" validate:"omitempty,gt=0"`
}

func (h *ClassHandler) CreateClass(c *fiber.Ctx) error {
	var req createClassRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	start, err := parseTime(req.StartTime)
	if err != nil {
		return badRequest(c, "start_time must be a valid RFC3339 timestamp")
	}
	end, err := parseTime(req.EndTime)
	if err != nil {
		return badRequest(c, "end_time must be a valid RFC3339 timestamp")
	}

	class, err := h.service.CreateClass(c.UserContext(), services.CreateClassInput{
		Title:     req.Title,
		StartTime: start,
		EndTime:   end,
		Capacity:  req.Capacity,
		TrainerID: req.TrainerID,
		BranchID:  req.BranchID,
	})
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"class": class})
}

func (h *ClassHandler) UpdateClass(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid class id")
	}

	var req updateClassRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	input := services.UpdateClassInput{
		Title:     req.Title,
		Capacity:  req.Capacity,
		TrainerID: req.TrainerID,
		BranchID:  req.BranchID,
	}
	if req.StartTime != nil {
		start, err := parseTime(*req.StartTime)
		if err != nil {
			return badRequest(c, "start_time must be a valid RFC3339 timestamp")
		}
		input.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := parseTime(*req.EndTime)
		if err != nil {
			return badRequest(c, "end_time must be a valid RFC3339 timestamp")
		}
		input.EndTime = &end
	}

	class, err := h.service.UpdateClass(c.UserContext(), id, input)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"class": class})
}

func (h *ClassHandler) DeleteClass(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid class id")
	}

	if err := h.service.DeleteClass(c.UserContext(), id); err != nil {
		return mapDomainError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ClassHandler) GetClass(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid class id")
	}

	class, err := h.service.GetClass(c.UserContext(), id)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"class": class})
}

func (h *ClassHandler) ListClasses(c *fiber.Ctx) error {
	var (
		input services.ListClassesInput
		err   error
	)
	if input.From, err = parseOptionalTime(c.Query("from")); err != nil {
		return badRequest(c, "from must be a valid RFC3339 timestamp")
	}
	if input.To, err = parseOptionalTime(c.Query("to")); err != nil {
		return badRequest(c, "to must be a valid RFC3339 timestamp")
	}
	if input.TrainerID, err = parseIDQuery(c.Query("trainer_id")); err != nil {
		return badRequest(c, "Invalid trainer_id")
	}
	if input.BranchID, err = parseIDQuery(c.Query("branch_id")); err != nil {
		return badRequest(c, "Invalid branch_id")
	}

	classes, err := h.service.ListClasses(c.UserContext(), input)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"classes": classes})
}

func (h *ClassHandler) ListClassBookings(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid class id")
	}

	bookings, err := h.service.ListClassBookings(c.UserContext(), id)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"bookings": bookings})
}
