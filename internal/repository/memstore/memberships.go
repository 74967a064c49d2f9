package memstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

var errNegativeSessions = errors.New("memstore: remaining_sessions must not be negative")

type membershipRepo struct {
	st    *state
	clock clock.Clock
}

func (r *membershipRepo) Create(_ context.Context, input repository.CreateMembershipInput) (*models.Membership, error) {
	if input.RemainingSessions < 0 {
		return nil, errNegativeSessions
	}
	now := r.clock.Now()
	membership := models.Membership{
		ID:                r.st.nextID(),
		UserID:            input.UserID,
		PlanID:            input.PlanID,
		StartDate:         input.StartDate.UTC(),
		EndDate:           input.EndDate.UTC(),
		RemainingSessions: input.RemainingSessions,
		Status:            input.Status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.st.memberships[membership.ID] = membership
	return &membership, nil
}

func (r *membershipRepo) GetByID(_ context.Context, id models.ID) (*models.Membership, error) {
	membership, ok := r.st.memberships[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &membership, nil
}

func (r *membershipRepo) GetByIDForUpdate(ctx context.Context, id models.ID) (*models.Membership, error) {
	return r.GetByID(ctx, id)
}

func (r *membershipRepo) FindUsable(
	_ context.Context,
	userID models.ID,
	now time.Time,
	order models.MembershipSelection,
) (*models.Membership, error) {
	var chosen *models.Membership
	for _, membership := range r.st.memberships {
		candidate := membership
		if candidate.UserID != userID || !candidate.Usable(now) {
			continue
		}
		if chosen == nil || order.Prefer(&candidate, chosen) {
			chosen = &candidate
		}
	}
	if chosen == nil {
		return nil, repository.ErrNotFound
	}
	return chosen, nil
}

func (r *membershipRepo) FindUsableForUpdate(
	ctx context.Context,
	userID models.ID,
	now time.Time,
	order models.MembershipSelection,
) (*models.Membership, error) {
	return r.FindUsable(ctx, userID, now, order)
}

func (r *membershipRepo) DecrementSession(_ context.Context, id models.ID) (*models.Membership, error) {
	membership, ok := r.st.memberships[id]
	if !ok || membership.RemainingSessions <= 0 {
		return nil, repository.ErrNotFound
	}
	membership.RemainingSessions--
	membership.UpdatedAt = r.clock.Now()
	r.st.memberships[id] = membership
	return &membership, nil
}

func (r *membershipRepo) Update(
	_ context.Context,
	id models.ID,
	input repository.UpdateMembershipInput,
) (*models.Membership, error) {
	membership, ok := r.st.memberships[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if input.RemainingSessions < 0 {
		return nil, errNegativeSessions
	}
	membership.EndDate = input.EndDate.UTC()
	membership.RemainingSessions = input.RemainingSessions
	membership.Status = input.Status
	membership.UpdatedAt = r.clock.Now()
	r.st.memberships[id] = membership
	return &membership, nil
}

func (r *membershipRepo) ListByUser(_ context.Context, userID models.ID) ([]models.Membership, error) {
	memberships := make([]models.Membership, 0)
	for _, membership := range r.st.memberships {
		if membership.UserID == userID {
			memberships = append(memberships, membership)
		}
	}
	sort.Slice(memberships, func(i, j int) bool {
		if !memberships[i].EndDate.Equal(memberships[j].EndDate) {
			return memberships[i].EndDate.After(memberships[j].EndDate)
		}
		return memberships[i].ID > memberships[j].ID
	})
	return memberships, nil
}

func (r *membershipRepo) ExpireLapsed(_ context.Context, now time.Time) (int64, error) {
	var expired int64
	for id, membership := range r.st.memberships {
		if membership.Status == models.MembershipStatusActive && membership.EndDate.Before(now) {
			membership.Status = models.MembershipStatusExpired
			membership.UpdatedAt = r.clock.Now()
			r.st.memberships[id] = membership
			expired++
		}
	}
	return expired, nil
}
