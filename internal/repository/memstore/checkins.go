package memstore

import (
	"context"
	"sort"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

type checkinRepo struct {
	st *state
}

func (r *checkinRepo) Create(_ context.Context, input repository.CreateCheckinInput) (*models.Checkin, error) {
	checkin := models.Checkin{
		ID:           r.st.nextID(),
		UserID:       input.UserID,
		BranchID:     input.BranchID,
		MembershipID: input.MembershipID,
		Method:       input.Method,
		Status:       input.Status,
		CheckedAt:    input.CheckedAt.UTC(),
	}
	r.st.checkins[checkin.ID] = checkin
	return &checkin, nil
}

func (r *checkinRepo) ListByUser(_ context.Context, userID models.ID, limit, offset int) ([]models.Checkin, int, error) {
	all := make([]models.Checkin, 0)
	for _, checkin := range r.st.checkins {
		if checkin.UserID == userID {
			all = append(all, checkin)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CheckedAt.Equal(all[j].CheckedAt) {
			return all[i].CheckedAt.After(all[j].CheckedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	if offset >= total {
		return []models.Checkin{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}
