package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/services"
)

// mapDomainError turns a service error into the API error body. Anything that
// is not a business rule is logged and reported as a generic 500.
func mapDomainError(c *fiber.Ctx, err error) error {
	var domainErr *services.Error
	if errors.As(err, &domainErr) {
		return c.Status(statusForCode(domainErr.Code)).JSON(fiber.Map{
			"error": err.Error(),
			"code":  domainErr.Code,
		})
	}

	log.Printf("[http] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func statusForCode(code string) int {
	switch code {
	case services.ErrInvalidInput.Code, services.ErrInvalidTime.Code:
		return fiber.StatusBadRequest
	case services.ErrInvalidQR.Code:
		return fiber.StatusUnauthorized
	case services.ErrForbidden.Code:
		return fiber.StatusForbidden
	case services.ErrClassNotFound.Code,
		services.ErrBookingNotFound.Code,
		services.ErrMembershipNotFound.Code,
		services.ErrPlanNotFound.Code:
		return fiber.StatusNotFound
	case services.ErrCancelTooLate.Code,
		services.ErrInvalidStatus.Code,
		services.ErrMembershipExpired.Code,
		services.ErrPlanInactive.Code:
		return fiber.StatusUnprocessableEntity
	case services.ErrNoMembership.Code,
		services.ErrClassFull.Code,
		services.ErrAlreadyBooked.Code,
		services.ErrTrainerBusy.Code,
		services.ErrCapacityTooSmall.Code,
		services.ErrClassHasBookings.Code:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"code":  services.ErrInvalidInput.Code,
	})
}
