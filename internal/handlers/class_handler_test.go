package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/services"
)

type stubClassService struct {
	class       *models.Class
	detail      *models.ClassDetail
	details     []models.ClassDetail
	bookings    []models.Booking
	err         error
	lastCreate  services.CreateClassInput
	lastUpdate  services.UpdateClassInput
	lastList    services.ListClassesInput
	lastID      models.ID
	createCalls int
}

func (s *stubClassService) CreateClass(_ context.Context, input services.CreateClassInput) (*models.Class, error) {
	s.createCalls++
	s.lastCreate = input
	return s.class, s.err
}

func (s *stubClassService) UpdateClass(_ context.Context, id models.ID, input services.UpdateClassInput) (*models.Class, error) {
	s.lastID = id
	s.lastUpdate = input
	return s.class, s.err
}

func (s *stubClassService) DeleteClass(_ context.Context, id models.ID) error {
	s.lastID = id
	return s.err
}

func (s *stubClassService) GetClass(_ context.Context, id models.ID) (*models.ClassDetail, error) {
	s.lastID = id
	return s.detail, s.err
}

func (s *stubClassService) ListClasses(_ context.Context, input services.ListClassesInput) ([]models.ClassDetail, error) {
	s.lastList = input
	return s.details, s.err
}

func (s *stubClassService) ListClassBookings(_ context.Context, classID models.ID) ([]models.Booking, error) {
	s.lastID = classID
	return s.bookings, s.err
}

func TestCreateClassTrainerBusyReturns409(t *testing.T) {
	service := &stubClassService{err: services.ErrTrainerBusy}
	handler := &ClassHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(1, "staff"))
	app.Post("/api/v1/classes", handler.CreateClass)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/classes", `{
		"title": "Spin",
		"start_time": "2030-05-06T10:00:00Z",
		"end_time": "2030-05-06T11:00:00Z",
		"capacity": 12,
		"trainer_id": 4,
		"branch_id": 2
	}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if body := decodeErrorBody(t, resp); body["code"] != "TRAINER_BUSY" {
		t.Fatalf("expected TRAINER_BUSY, got %q", body["code"])
	}
	wantStart := time.Date(2030, 5, 6, 10, 0, 0, 0, time.UTC)
	if !service.lastCreate.StartTime.Equal(wantStart) || service.lastCreate.Capacity != 12 {
		t.Fatalf("unexpected create input %+v", service.lastCreate)
	}
}

func TestCreateClassValidatesBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "zero capacity", body: `{"title":"Spin","start_time":"2030-05-06T10:00:00Z","end_time":"2030-05-06T11:00:00Z","capacity":0,"trainer_id":4,"branch_id":2}`},
		{name: "missing title", body: `{"start_time":"2030-05-06T10:00:00Z","end_time":"2030-05-06T11:00:00Z","capacity":5,"trainer_id":4,"branch_id":2}`},
		{name: "bad time", body: `{"title":"Spin","start_time":"10am","end_time":"2030-05-06T11:00:00Z","capacity":5,"trainer_id":4,"branch_id":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubClassService{}
			handler := &ClassHandler{service: service}

			app := fiber.New()
			app.Use(withPrincipal(1, "staff"))
			app.Post("/api/v1/classes", handler.CreateClass)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/classes", tt.body))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if service.createCalls != 0 {
				t.Fatalf("service should not be called")
			}
		})
	}
}

func TestUpdateClassForwardsPartialFields(t *testing.T) {
	service := &stubClassService{class: &models.Class{ID: 6}}
	handler := &ClassHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(1, "staff"))
	app.Put("/api/v1/classes/:id", handler.UpdateClass)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/v1/classes/6", `{"capacity": 20, "end_time": "2030-05-06T12:00:00Z"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	in := service.lastUpdate
	if in.Capacity == nil || *in.Capacity != 20 {
		t.Fatalf("expected capacity 20, got %v", in.Capacity)
	}
	if in.StartTime != nil || in.Title != nil || in.TrainerID != nil {
		t.Fatalf("absent fields should stay nil: %+v", in)
	}
	if in.EndTime == nil || !in.EndTime.Equal(time.Date(2030, 5, 6, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end time %v", in.EndTime)
	}
}

func TestDeleteClassWithBookingsReturns409(t *testing.T) {
	service := &stubClassService{err: services.ErrClassHasBookings}
	handler := &ClassHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(1, "staff"))
	app.Delete("/api/v1/classes/:id", handler.DeleteClass)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/classes/6", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestDeleteClassReturnsNoContent(t *testing.T) {
	service := &stubClassService{}
	handler := &ClassHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(1, "staff"))
	app.Delete("/api/v1/classes/:id", handler.DeleteClass)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/classes/6", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if service.lastID != 6 {
		t.Fatalf("expected class 6, got %d", service.lastID)
	}
}

func TestListClassesParsesFilters(t *testing.T) {
	service := &stubClassService{details: []models.ClassDetail{}}
	handler := &ClassHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(42, "member"))
	app.Get("/api/v1/classes", handler.ListClasses)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/classes?from=2030-05-06T00:00:00Z&trainer_id=4&branch_id=2", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	in := service.lastList
	if in.From == nil || !in.From.Equal(time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", in.From)
	}
	if in.To != nil {
		t.Fatalf("to should be unset")
	}
	if in.TrainerID != 4 || in.BranchID != 2 {
		t.Fatalf("unexpected filters %+v", in)
	}
}

func TestListClassesRejectsMalformedFilter(t *testing.T) {
	handler := &ClassHandler{service: &stubClassService{}}

	app := fiber.New()
	app.Use(withPrincipal(42, "member"))
	app.Get("/api/v1/classes", handler.ListClasses)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/classes?trainer_id=-3", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
