package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/events"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
	"github.com/DTyss/GymApp-sub000/internal/repository/memstore"
)

var testNow = time.Date(2030, 5, 6, 8, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	clock     *clock.Manual
	store     *memstore.Store
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewManual(testNow)
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		clock:     clk,
		store:     memstore.New(clk),
		publisher: &recordingPublisher{},
	}
}

func (f *fixture) tx(fn func(st repository.Stores) error) {
	f.t.Helper()
	if err := f.store.InTx(f.ctx, fn); err != nil {
		f.t.Fatalf("fixture tx: %v", err)
	}
}

func (f *fixture) plan(durationDays, sessions int) *models.Plan {
	f.t.Helper()
	var plan *models.Plan
	f.tx(func(st repository.Stores) error {
		var err error
		plan, err = st.Plans.Create(f.ctx, repository.CreatePlanInput{
			Name:         "Ten pack",
			Price:        99,
			DurationDays: durationDays,
			Sessions:     sessions,
		})
		return err
	})
	return plan
}

func (f *fixture) membership(userID models.ID, endDate time.Time, sessions int, status string) *models.Membership {
	f.t.Helper()
	var membership *models.Membership
	f.tx(func(st repository.Stores) error {
		var err error
		membership, err = st.Memberships.Create(f.ctx, repository.CreateMembershipInput{
			UserID:            userID,
			PlanID:            1,
			StartDate:         testNow.AddDate(0, 0, -30),
			EndDate:           endDate,
			RemainingSessions: sessions,
			Status:            status,
		})
		return err
	})
	return membership
}

func (f *fixture) activeMembership(userID models.ID, sessions int) *models.Membership {
	return f.membership(userID, testNow.AddDate(0, 1, 0), sessions, models.MembershipStatusActive)
}

func (f *fixture) class(trainerID models.ID, start time.Time, duration time.Duration, capacity int) *models.Class {
	f.t.Helper()
	var class *models.Class
	f.tx(func(st repository.Stores) error {
		var err error
		class, err = st.Classes.Create(f.ctx, repository.CreateClassInput{
			Title:     "Spin",
			StartTime: start,
			EndTime:   start.Add(duration),
			Capacity:  capacity,
			TrainerID: trainerID,
			BranchID:  1,
		})
		return err
	})
	return class
}

func (f *fixture) getMembership(id models.ID) *models.Membership {
	f.t.Helper()
	var membership *models.Membership
	f.tx(func(st repository.Stores) error {
		var err error
		membership, err = st.Memberships.GetByID(f.ctx, id)
		return err
	})
	return membership
}

func (f *fixture) checkinCount(userID models.ID) int {
	f.t.Helper()
	var total int
	f.tx(func(st repository.Stores) error {
		var err error
		_, total, err = st.Checkins.ListByUser(f.ctx, userID, 100, 0)
		return err
	})
	return total
}
