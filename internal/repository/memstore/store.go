// Package memstore is an in-memory repository.Transactor. Transactions run one
// at a time against a private copy of the state that replaces the shared state
// only when the callback succeeds, which gives serializable isolation and full
// rollback. It backs STORE_DRIVER=memory and the engine tests.
package memstore

import (
	"context"
	"sync"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

type state struct {
	classes     map[models.ID]models.Class
	bookings    map[models.ID]models.Booking
	memberships map[models.ID]models.Membership
	checkins    map[models.ID]models.Checkin
	plans       map[models.ID]models.Plan
	lastID      models.ID
}

func newState() *state {
	return &state{
		classes:     map[models.ID]models.Class{},
		bookings:    map[models.ID]models.Booking{},
		memberships: map[models.ID]models.Membership{},
		checkins:    map[models.ID]models.Checkin{},
		plans:       map[models.ID]models.Plan{},
	}
}

func (s *state) clone() *state {
	out := &state{
		classes:     make(map[models.ID]models.Class, len(s.classes)),
		bookings:    make(map[models.ID]models.Booking, len(s.bookings)),
		memberships: make(map[models.ID]models.Membership, len(s.memberships)),
		checkins:    make(map[models.ID]models.Checkin, len(s.checkins)),
		plans:       make(map[models.ID]models.Plan, len(s.plans)),
		lastID:      s.lastID,
	}
	for k, v := range s.classes {
		out.classes[k] = v
	}
	for k, v := range s.bookings {
		out.bookings[k] = v
	}
	for k, v := range s.memberships {
		out.memberships[k] = v
	}
	for k, v := range s.checkins {
		out.checkins[k] = v
	}
	for k, v := range s.plans {
		out.plans[k] = v
	}
	return out
}

func (s *state) nextID() models.ID {
	s.lastID++
	return s.lastID
}

type Store struct {
	mu    sync.Mutex
	state *state
	clock clock.Clock
}

func New(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System()
	}
	return &Store{state: newState(), clock: clk}
}

func (s *Store) InTx(ctx context.Context, fn func(repository.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(work.stores(s.clock)); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *state) stores(clk clock.Clock) repository.Stores {
	return repository.Stores{
		Classes:     &classRepo{st: s, clock: clk},
		Bookings:    &bookingRepo{st: s, clock: clk},
		Memberships: &membershipRepo{st: s, clock: clk},
		Checkins:    &checkinRepo{st: s},
		Plans:       &planRepo{st: s, clock: clk},
	}
}
