package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/services"
)

func TestStatusForCodeCoversEveryBusinessError(t *testing.T) {
	tests := map[*services.Error]int{
		services.ErrInvalidInput:       http.StatusBadRequest,
		services.ErrInvalidTime:        http.StatusBadRequest,
		services.ErrNoMembership:       http.StatusConflict,
		services.ErrClassNotFound:      http.StatusNotFound,
		services.ErrClassFull:          http.StatusConflict,
		services.ErrAlreadyBooked:      http.StatusConflict,
		services.ErrBookingNotFound:    http.StatusNotFound,
		services.ErrCancelTooLate:      http.StatusUnprocessableEntity,
		services.ErrInvalidQR:          http.StatusUnauthorized,
		services.ErrTrainerBusy:        http.StatusConflict,
		services.ErrCapacityTooSmall:   http.StatusConflict,
		services.ErrClassHasBookings:   http.StatusConflict,
		services.ErrInvalidStatus:      http.StatusUnprocessableEntity,
		services.ErrMembershipExpired:  http.StatusUnprocessableEntity,
		services.ErrMembershipNotFound: http.StatusNotFound,
		services.ErrPlanNotFound:       http.StatusNotFound,
		services.ErrPlanInactive:       http.StatusUnprocessableEntity,
		services.ErrForbidden:          http.StatusForbidden,
	}

	for domainErr, want := range tests {
		if got := statusForCode(domainErr.Code); got != want {
			t.Fatalf("%s: expected %d, got %d", domainErr.Code, want, got)
		}
	}
}

func TestMapDomainErrorHidesInfrastructureErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return mapDomainError(c, errors.New("pq: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body := decodeErrorBody(t, resp)
	if body["error"] != "Internal server error" {
		t.Fatalf("expected generic message, got %q", body["error"])
	}
	if _, ok := body["code"]; ok {
		t.Fatalf("infrastructure errors should not carry a code")
	}
}
