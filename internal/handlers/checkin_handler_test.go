package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/services"
)

type stubCheckinService struct {
	issueResult  models.QrPayload
	issueErr     error
	checkinRes   *models.CheckinResult
	checkinErr   error
	listResult   []models.Checkin
	listTotal    int
	listErr      error
	lastUserID   models.ID
	lastBranchID models.ID
	lastTTL      time.Duration
	lastPayload  models.QrPayload
	lastLimit    int
	lastOffset   int
	manualCalled bool
}

func (s *stubCheckinService) IssueQr(_ context.Context, userID models.ID, ttl time.Duration) (models.QrPayload, error) {
	s.lastUserID = userID
	s.lastTTL = ttl
	return s.issueResult, s.issueErr
}

func (s *stubCheckinService) Checkin(_ context.Context, payload models.QrPayload, branchID models.ID) (*models.CheckinResult, error) {
	s.lastPayload = payload
	s.lastBranchID = branchID
	return s.checkinRes, s.checkinErr
}

func (s *stubCheckinService) ManualCheckin(_ context.Context, userID, branchID models.ID) (*models.CheckinResult, error) {
	s.manualCalled = true
	s.lastUserID = userID
	s.lastBranchID = branchID
	return s.checkinRes, s.checkinErr
}

func (s *stubCheckinService) ListCheckins(_ context.Context, userID models.ID, limit, offset int) ([]models.Checkin, int, error) {
	s.lastUserID = userID
	s.lastLimit = limit
	s.lastOffset = offset
	return s.listResult, s.listTotal, s.listErr
}

func TestIssueQrConvertsTTLSeconds(t *testing.T) {
	service := &stubCheckinService{
		issueResult: models.QrPayload{UserID: 42, Nonce: "n", ExpiresAt: 1_900_000_030, Signature: "abc"},
	}
	handler := &CheckinHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(42, "member"))
	app.Get("/api/v1/checkins/qr", handler.IssueQr)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/checkins/qr?ttl=30", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTTL != 30*time.Second {
		t.Fatalf("expected ttl 30s, got %s", service.lastTTL)
	}

	var body struct {
		QR        models.QrPayload `json:"qr"`
		ExpiresAt time.Time        `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.QR.Signature != "abc" || body.QR.UserID != 42 {
		t.Fatalf("unexpected payload %+v", body.QR)
	}
	if !body.ExpiresAt.Equal(time.Unix(1_900_000_030, 0)) {
		t.Fatalf("unexpected expires_at %s", body.ExpiresAt)
	}
}

func TestIssueQrRejectsNonNumericTTL(t *testing.T) {
	service := &stubCheckinService{}
	handler := &CheckinHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(42, "member"))
	app.Get("/api/v1/checkins/qr", handler.IssueQr)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/checkins/qr?ttl=soon", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.lastUserID != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestCheckinAcceptsObjectAndStringPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "object",
			body: `{"branch_id": 3, "payload": {"user_id": "42", "nonce": "n1", "exp": 1900000000, "sig": "deadbeef"}}`,
		},
		{
			name: "scanned string",
			body: `{"branch_id": 3, "payload": "{\"user_id\":\"42\",\"nonce\":\"n1\",\"exp\":1900000000,\"sig\":\"deadbeef\"}"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubCheckinService{
				checkinRes: &models.CheckinResult{MembershipID: 8, RemainingSessions: 4},
			}
			handler := &CheckinHandler{service: service}

			app := fiber.New()
			app.Use(withPrincipal(1, "staff"))
			app.Post("/api/v1/checkins", handler.Checkin)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/checkins", tt.body))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("expected 201, got %d", resp.StatusCode)
			}
			want := models.QrPayload{UserID: 42, Nonce: "n1", ExpiresAt: 1900000000, Signature: "deadbeef"}
			if service.lastPayload != want {
				t.Fatalf("expected payload %+v, got %+v", want, service.lastPayload)
			}
			if service.lastBranchID != 3 {
				t.Fatalf("expected branch 3, got %d", service.lastBranchID)
			}

			var result models.CheckinResult
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if result.RemainingSessions != 4 {
				t.Fatalf("expected remaining 4, got %d", result.RemainingSessions)
			}
		})
	}
}

func TestCheckinGarbagePayloadReachesVerification(t *testing.T) {
	service := &stubCheckinService{checkinErr: services.ErrInvalidQR}
	handler := &CheckinHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(1, "staff"))
	app.Post("/api/v1/checkins", handler.Checkin)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/checkins", `{"branch_id": 3, "payload": "not-a-token"}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body := decodeErrorBody(t, resp); body["code"] != "INVALID_QR" {
		t.Fatalf("expected INVALID_QR, got %q", body["code"])
	}
}

func TestManualCheckinRequiresUser(t *testing.T) {
	service := &stubCheckinService{}
	handler := &CheckinHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(1, "staff"))
	app.Post("/api/v1/checkins/manual", handler.ManualCheckin)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/checkins/manual", `{"branch_id": 3}`))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.manualCalled {
		t.Fatalf("service should not be called without user_id")
	}
}

func TestListCheckinsPaginates(t *testing.T) {
	service := &stubCheckinService{
		listResult: []models.Checkin{{ID: 1}, {ID: 2}},
		listTotal:  12,
	}
	handler := &CheckinHandler{service: service}

	app := fiber.New()
	app.Use(withPrincipal(42, "member"))
	app.Get("/api/v1/checkins", handler.ListCheckins)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/checkins?page=3&limit=5", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if service.lastLimit != 5 || service.lastOffset != 10 {
		t.Fatalf("expected limit 5 offset 10, got %d/%d", service.lastLimit, service.lastOffset)
	}

	var body struct {
		Checkins   []models.Checkin      `json:"checkins"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Pagination.TotalPages != 3 || body.Pagination.Total != 12 {
		t.Fatalf("unexpected pagination %+v", body.Pagination)
	}
	if len(body.Checkins) != 2 {
		t.Fatalf("expected 2 check-ins, got %d", len(body.Checkins))
	}
}
