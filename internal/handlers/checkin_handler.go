package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/services"
)

type CheckinHandler struct {
	service checkinApplicationService
}

type checkinApplicationService interface {
	IssueQr(ctx context.Context, userID models.ID, ttl time.Duration) (models.QrPayload, error)
	Checkin(ctx context.Context, payload models.QrPayload, branchID models.ID) (*models.CheckinResult, error)
	ManualCheckin(ctx context.Context, userID, branchID models.ID) (*models.CheckinResult, error)
	ListCheckins(ctx context.Context, userID models.ID, limit, offset int) ([]models.Checkin, int, error)
}

func NewCheckinHandler(service *services.CheckinService) *CheckinHandler {
	return &CheckinHandler{service: service}
}

// checkinRequest carries the scanned QR content either as an object or as the
// raw JSON string the scanner read.
type checkinRequest struct {
	Payload  json.RawMessage `json:"payload"`
	BranchID models.ID       `json:"branch_id" validate:"required,gt=0"`
}

type manualCheckinRequest struct {
	UserID   models.ID `json:"user_id" validate:"required,gt=0"`
	BranchID models.ID `json:"branch_id" validate:"required,gt=0"`
}

// IssueQr returns a signed token for the caller. ttl is in seconds.
func (h *CheckinHandler) IssueQr(c *fiber.Ctx) error {
	userID, _, err := principal(c)
	if err != nil {
		return unauthenticated(c)
	}

	var ttl time.Duration
	if raw := c.Query("ttl"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return badRequest(c, "ttl must be a positive number of seconds")
		}
		ttl = time.Duration(seconds) * time.Second
	}

	payload, err := h.service.IssueQr(c.UserContext(), userID, ttl)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"qr":         payload,
		"expires_at": time.Unix(payload.ExpiresAt, 0).UTC(),
	})
}

func (h *CheckinHandler) Checkin(c *fiber.Ctx) error {
	var req checkinRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	// an unreadable payload is an invalid token, not a malformed request
	payload, _ := decodeQrPayload(req.Payload)

	result, err := h.service.Checkin(c.UserContext(), payload, req.BranchID)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *CheckinHandler) ManualCheckin(c *fiber.Ctx) error {
	var req manualCheckinRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	result, err := h.service.ManualCheckin(c.UserContext(), req.UserID, req.BranchID)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *CheckinHandler) ListCheckins(c *fiber.Ctx) error {
	userID, _, err := principal(c)
	if err != nil {
		return unauthenticated(c)
	}

	page, limit := parsePagination(c)
	checkins, total, err := h.service.ListCheckins(c.UserContext(), userID, limit, (page-1)*limit)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"checkins":   checkins,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func decodeQrPayload(raw json.RawMessage) (models.QrPayload, error) {
	var payload models.QrPayload
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return payload, nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := sonic.Unmarshal(raw, &encoded); err != nil {
			return payload, err
		}
		raw = []byte(encoded)
	}
	err := sonic.Unmarshal(raw, &payload)
	return payload, err
}
