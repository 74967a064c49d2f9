package services

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/events"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/qr"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

type tokenCodec interface {
	Issue(userID models.ID, ttl time.Duration) models.QrPayload
	Verify(payload models.QrPayload) bool
}

type CheckinOptions struct {
	Clock     clock.Clock
	Publisher events.Publisher
	Selection models.MembershipSelection
	// Ledger makes tokens single-use when set.
	Ledger qr.NonceLedger
	MaxTTL time.Duration
}

type CheckinService struct {
	tx        repository.Transactor
	codec     tokenCodec
	clock     clock.Clock
	publisher events.Publisher
	selection models.MembershipSelection
	ledger    qr.NonceLedger
	maxTTL    time.Duration
}

func NewCheckinService(tx repository.Transactor, codec tokenCodec, opts CheckinOptions) *CheckinService {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop()
	}
	if opts.Selection == "" {
		opts.Selection = models.DefaultMembershipSelection
	}
	if opts.MaxTTL <= 0 {
		opts.MaxTTL = 5 * time.Minute
	}
	return &CheckinService{
		tx:        tx,
		codec:     codec,
		clock:     opts.Clock,
		publisher: opts.Publisher,
		selection: opts.Selection,
		ledger:    opts.Ledger,
		maxTTL:    opts.MaxTTL,
	}
}

// IssueQr signs a check-in token for the member. A zero ttl uses the codec default.
func (s *CheckinService) IssueQr(ctx context.Context, userID models.ID, ttl time.Duration) (models.QrPayload, error) {
	if userID <= 0 {
		return models.QrPayload{}, invalidf("user is required")
	}
	if ttl < 0 || ttl > s.maxTTL {
		return models.QrPayload{}, invalidf("ttl must be between 0 and %s", s.maxTTL)
	}
	_, span := startSpan(ctx, "checkin.issue_qr", attribute.Int64("gym.user_id", int64(userID)))
	defer span.End()
	return s.codec.Issue(userID, ttl), nil
}

// Checkin redeems a QR token at a branch. A bad token is rejected before any
// state is touched. The check-in row and the session decrement commit together.
func (s *CheckinService) Checkin(ctx context.Context, payload models.QrPayload, branchID models.ID) (result *models.CheckinResult, err error) {
	ctx, span := startSpan(ctx, "checkin.qr", attribute.Int64("gym.branch_id", int64(branchID)))
	defer func() { endSpan(span, err) }()

	if !s.codec.Verify(payload) {
		return nil, ErrInvalidQR
	}
	if branchID <= 0 {
		return nil, invalidf("branch_id is required")
	}

	if s.ledger != nil {
		claimed, err := s.ledger.Claim(ctx, payload.UserID, payload.Nonce, qr.ExpiresAt(payload))
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, ErrInvalidQR
		}
	}

	result, err = s.record(ctx, payload.UserID, branchID, models.CheckinMethodQR)
	if err != nil && s.ledger != nil {
		if releaseErr := s.ledger.Release(context.WithoutCancel(ctx), payload.UserID, payload.Nonce); releaseErr != nil {
			log.Printf("[checkin] release nonce for user %s: %v", payload.UserID, releaseErr)
		}
	}
	return result, err
}

// ManualCheckin is the front-desk path for members without a phone. It
// consumes a session exactly like a QR check-in.
func (s *CheckinService) ManualCheckin(ctx context.Context, userID, branchID models.ID) (result *models.CheckinResult, err error) {
	ctx, span := startSpan(ctx, "checkin.manual", attribute.Int64("gym.branch_id", int64(branchID)))
	defer func() { endSpan(span, err) }()

	if userID <= 0 || branchID <= 0 {
		return nil, invalidf("user_id and branch_id are required")
	}
	return s.record(ctx, userID, branchID, models.CheckinMethodManual)
}

func (s *CheckinService) record(ctx context.Context, userID, branchID models.ID, method string) (*models.CheckinResult, error) {
	now := s.clock.Now()
	var result *models.CheckinResult

	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		membership, err := st.Memberships.FindUsableForUpdate(ctx, userID, now, s.selection)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoMembership
			}
			return err
		}

		checkin, err := st.Checkins.Create(ctx, repository.CreateCheckinInput{
			UserID:       userID,
			BranchID:     branchID,
			MembershipID: membership.ID,
			Method:       method,
			Status:       models.CheckinStatusSuccess,
			CheckedAt:    now,
		})
		if err != nil {
			return err
		}

		updated, err := st.Memberships.DecrementSession(ctx, membership.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoMembership
			}
			return err
		}

		result = &models.CheckinResult{
			Checkin:           *checkin,
			MembershipID:      updated.ID,
			RemainingSessions: updated.RemainingSessions,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[checkin] user %s checked in at branch %s via %s, %d sessions left",
		userID, branchID, method, result.RemainingSessions)
	events.Emit(ctx, s.publisher, events.Event{
		Type:       events.CheckinRecorded,
		UserID:     userID,
		OccurredAt: now,
		Data:       result,
	})
	return result, nil
}

func (s *CheckinService) ListCheckins(ctx context.Context, userID models.ID, limit, offset int) ([]models.Checkin, int, error) {
	if limit <= 0 || offset < 0 {
		return nil, 0, invalidf("invalid pagination")
	}
	var (
		checkins []models.Checkin
		total    int
	)
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		var err error
		checkins, total, err = st.Checkins.ListByUser(ctx, userID, limit, offset)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return checkins, total, nil
}
