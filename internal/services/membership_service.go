package services

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

const (
	RoleMember = "member"
	RoleStaff  = "staff"
)

type MembershipService struct {
	tx    repository.Transactor
	clock clock.Clock
}

func NewMembershipService(tx repository.Transactor, clk clock.Clock) *MembershipService {
	if clk == nil {
		clk = clock.System()
	}
	return &MembershipService{tx: tx, clock: clk}
}

type CreateMembershipInput struct {
	UserID models.ID
	PlanID models.ID
	// StartDate defaults to now.
	StartDate *time.Time
}

type ExtendMembershipInput struct {
	AdditionalDays     *int
	AdditionalSessions *int
}

func (s *MembershipService) Create(ctx context.Context, input CreateMembershipInput) (membership *models.Membership, err error) {
	ctx, span := startSpan(ctx, "membership.create", attribute.Int64("gym.user_id", int64(input.UserID)))
	defer func() { endSpan(span, err) }()

	if input.UserID <= 0 || input.PlanID <= 0 {
		return nil, invalidf("user_id and plan_id are required")
	}
	start := s.clock.Now()
	if input.StartDate != nil {
		start = input.StartDate.UTC()
	}

	err = s.tx.InTx(ctx, func(st repository.Stores) error {
		plan, err := st.Plans.GetByID(ctx, input.PlanID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPlanNotFound
			}
			return err
		}
		if !plan.IsActive {
			return ErrPlanInactive
		}

		created, err := st.Memberships.Create(ctx, repository.CreateMembershipInput{
			UserID:            input.UserID,
			PlanID:            plan.ID,
			StartDate:         start,
			EndDate:           start.AddDate(0, 0, plan.DurationDays),
			RemainingSessions: plan.Sessions,
			Status:            models.MembershipStatusActive,
		})
		if err != nil {
			return err
		}
		membership = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// Extend pushes the end date and/or adds sessions. Adding days revives an
// expired membership; a paused one stays paused until resumed.
func (s *MembershipService) Extend(ctx context.Context, id models.ID, input ExtendMembershipInput) (membership *models.Membership, err error) {
	ctx, span := startSpan(ctx, "membership.extend", attribute.Int64("gym.membership_id", int64(id)))
	defer func() { endSpan(span, err) }()

	days, sessions := 0, 0
	if input.AdditionalDays != nil {
		days = *input.AdditionalDays
	}
	if input.AdditionalSessions != nil {
		sessions = *input.AdditionalSessions
	}
	if days < 0 || sessions < 0 {
		return nil, invalidf("additional_days and additional_sessions must not be negative")
	}
	if days == 0 && sessions == 0 {
		return nil, invalidf("additional_days or additional_sessions is required")
	}

	return s.mutate(ctx, id, func(current *models.Membership) (repository.UpdateMembershipInput, error) {
		next := repository.UpdateMembershipInput{
			EndDate:           current.EndDate.AddDate(0, 0, days),
			RemainingSessions: current.RemainingSessions + sessions,
			Status:            current.Status,
		}
		if days > 0 && current.Status == models.MembershipStatusExpired {
			next.Status = models.MembershipStatusActive
		}
		return next, nil
	})
}

func (s *MembershipService) Pause(ctx context.Context, id models.ID) (membership *models.Membership, err error) {
	ctx, span := startSpan(ctx, "membership.pause", attribute.Int64("gym.membership_id", int64(id)))
	defer func() { endSpan(span, err) }()

	return s.mutate(ctx, id, func(current *models.Membership) (repository.UpdateMembershipInput, error) {
		if current.Status != models.MembershipStatusActive {
			return repository.UpdateMembershipInput{}, ErrInvalidStatus
		}
		return repository.UpdateMembershipInput{
			EndDate:           current.EndDate,
			RemainingSessions: current.RemainingSessions,
			Status:            models.MembershipStatusPaused,
		}, nil
	})
}

// Resume reactivates a paused membership whose end date has not passed.
func (s *MembershipService) Resume(ctx context.Context, id models.ID) (membership *models.Membership, err error) {
	ctx, span := startSpan(ctx, "membership.resume", attribute.Int64("gym.membership_id", int64(id)))
	defer func() { endSpan(span, err) }()

	now := s.clock.Now()
	return s.mutate(ctx, id, func(current *models.Membership) (repository.UpdateMembershipInput, error) {
		if current.Status != models.MembershipStatusPaused {
			return repository.UpdateMembershipInput{}, ErrInvalidStatus
		}
		if current.Lapsed(now) {
			return repository.UpdateMembershipInput{}, ErrMembershipExpired
		}
		return repository.UpdateMembershipInput{
			EndDate:           current.EndDate,
			RemainingSessions: current.RemainingSessions,
			Status:            models.MembershipStatusActive,
		}, nil
	})
}

// mutate applies change to the locked membership row and writes the result.
func (s *MembershipService) mutate(
	ctx context.Context,
	id models.ID,
	change func(current *models.Membership) (repository.UpdateMembershipInput, error),
) (*models.Membership, error) {
	if id <= 0 {
		return nil, ErrMembershipNotFound
	}

	var membership *models.Membership
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		current, err := st.Memberships.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		next, err := change(current)
		if err != nil {
			return err
		}
		updated, err := st.Memberships.Update(ctx, id, next)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		membership = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// Get returns a membership to its owner or to staff. Someone else's
// membership reads as missing, so ids cannot be probed.
func (s *MembershipService) Get(ctx context.Context, actorID models.ID, role string, id models.ID) (*models.Membership, error) {
	var membership *models.Membership
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		found, err := st.Memberships.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		if role != RoleStaff && found.UserID != actorID {
			return ErrMembershipNotFound
		}
		membership = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *MembershipService) ListForUser(ctx context.Context, userID models.ID) ([]models.Membership, error) {
	var memberships []models.Membership
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		var err error
		memberships, err = st.Memberships.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// ExpireLapsed marks active memberships past their end date as expired. The
// store re-checks both conditions on the row it writes, so a concurrent
// extend is never undone.
func (s *MembershipService) ExpireLapsed(ctx context.Context) (expired int64, err error) {
	ctx, span := startSpan(ctx, "membership.expire_lapsed")
	defer func() { endSpan(span, err) }()

	now := s.clock.Now()
	err = s.tx.InTx(ctx, func(st repository.Stores) error {
		var err error
		expired, err = st.Memberships.ExpireLapsed(ctx, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		log.Printf("[sweep] expired %d memberships", expired)
	}
	return expired, nil
}
