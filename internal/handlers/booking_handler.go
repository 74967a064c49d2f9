package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/services"
)

type BookingHandler struct {
	service bookingApplicationService
}

type bookingApplicationService interface {
	CreateBooking(ctx context.Context, userID, classID models.ID) (*models.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID models.ID) (*models.Booking, error)
	ListBookings(ctx context.Context, userID models.ID, status string) ([]models.BookingDetail, error)
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	ClassID models.ID `json:"class_id" validate:"required,gt=0"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	userID, _, err := principal(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req createBookingRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	booking, err := h.service.CreateBooking(c.UserContext(), userID, req.ClassID)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	userID, _, err := principal(c)
	if err != nil {
		return unauthenticated(c)
	}

	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid booking id")
	}

	booking, err := h.service.CancelBooking(c.UserContext(), userID, bookingID)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	userID, _, err := principal(c)
	if err != nil {
		return unauthenticated(c)
	}

	bookings, err := h.service.ListBookings(c.UserContext(), userID, strings.TrimSpace(c.Query("status")))
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"bookings": bookings})
}
