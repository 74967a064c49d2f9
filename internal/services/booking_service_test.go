package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/events"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

func (f *fixture) bookingService() *BookingService {
	return NewBookingService(f.store, f.clock, f.publisher, models.DefaultMembershipSelection)
}

func TestCreateBookingHonoursCapacityUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	service := f.bookingService()

	const capacity = 3
	const members = 12
	class := f.class(100, testNow.Add(24*time.Hour), time.Hour, capacity)
	for i := 1; i <= members; i++ {
		f.activeMembership(models.ID(1000+i), 5)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for i := 1; i <= members; i++ {
		wg.Add(1)
		go func(userID models.ID) {
			defer wg.Done()
			_, err := service.CreateBooking(f.ctx, userID, class.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrClassFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(models.ID(1000 + i))
	}
	wg.Wait()

	if succeeded != capacity {
		t.Fatalf("expected %d bookings, got %d", capacity, succeeded)
	}
	if full != members-capacity {
		t.Fatalf("expected %d CLASS_FULL rejections, got %d", members-capacity, full)
	}
}

func TestCreateBookingRequiresUsableMembership(t *testing.T) {
	f := newFixture(t)
	service := f.bookingService()
	class := f.class(100, testNow.Add(24*time.Hour), time.Hour, 10)

	f.membership(1, testNow.Add(-time.Hour), 5, models.MembershipStatusActive)
	f.membership(1, testNow.AddDate(0, 1, 0), 0, models.MembershipStatusActive)
	f.membership(1, testNow.AddDate(0, 1, 0), 5, models.MembershipStatusPaused)

	if _, err := service.CreateBooking(f.ctx, 1, class.ID); !errors.Is(err, ErrNoMembership) {
		t.Fatalf("expected ErrNoMembership, got %v", err)
	}
}

func TestCreateBookingDoesNotConsumeSessions(t *testing.T) {
	f := newFixture(t)
	service := f.bookingService()
	class := f.class(100, testNow.Add(24*time.Hour), time.Hour, 10)
	membership := f.activeMembership(1, 4)

	if _, err := service.CreateBooking(f.ctx, 1, class.ID); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if got := f.getMembership(membership.ID).RemainingSessions; got != 4 {
		t.Fatalf("expected 4 sessions to remain, got %d", got)
	}
}

func TestCreateBookingUnknownClass(t *testing.T) {
	f := newFixture(t)
	f.activeMembership(1, 4)

	if _, err := f.bookingService().CreateBooking(f.ctx, 1, 999); !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("expected ErrClassNotFound, got %v", err)
	}
}

func TestBookingCannotBeRepeatedEvenAfterCancel(t *testing.T) {
	f := newFixture(t)
	service := f.bookingService()
	class := f.class(100, testNow.Add(24*time.Hour), time.Hour, 10)
	f.activeMembership(1, 4)

	booking, err := service.CreateBooking(f.ctx, 1, class.ID)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := service.CreateBooking(f.ctx, 1, class.ID); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked on duplicate, got %v", err)
	}

	if _, err := service.CancelBooking(f.ctx, 1, booking.ID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if _, err := service.CreateBooking(f.ctx, 1, class.ID); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked after cancel, got %v", err)
	}
}

func TestCancelBookingCutoff(t *testing.T) {
	cases := []struct {
		name    string
		startIn time.Duration
		wantErr error
	}{
		{name: "one hour before", startIn: time.Hour, wantErr: ErrCancelTooLate},
		{name: "exactly at cutoff", startIn: CancelCutoff, wantErr: ErrCancelTooLate},
		{name: "three hours before", startIn: 3 * time.Hour},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			service := f.bookingService()
			class := f.class(100, testNow.Add(tc.startIn), time.Hour, 10)
			f.activeMembership(1, 4)

			booking, err := service.CreateBooking(f.ctx, 1, class.ID)
			if err != nil {
				t.Fatalf("CreateBooking: %v", err)
			}

			cancelled, err := service.CancelBooking(f.ctx, 1, booking.ID)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CancelBooking: %v", err)
			}
			if cancelled.Status != models.BookingStatusCancelled {
				t.Fatalf("expected cancelled status, got %q", cancelled.Status)
			}
		})
	}
}

func TestCancelBookingOfAnotherUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	service := f.bookingService()
	class := f.class(100, testNow.Add(24*time.Hour), time.Hour, 10)
	f.activeMembership(1, 4)

	booking, err := service.CreateBooking(f.ctx, 1, class.ID)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := service.CancelBooking(f.ctx, 2, booking.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if _, err := service.CancelBooking(f.ctx, 1, 999); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound for unknown id, got %v", err)
	}
}

func TestCancelBookingIsIdempotentAndFreesSeat(t *testing.T) {
	f := newFixture(t)
	service := f.bookingService()
	class := f.class(100, testNow.Add(24*time.Hour), time.Hour, 1)
	f.activeMembership(1, 4)
	f.activeMembership(2, 4)

	booking, err := service.CreateBooking(f.ctx, 1, class.ID)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := service.CreateBooking(f.ctx, 2, class.ID); !errors.Is(err, ErrClassFull) {
		t.Fatalf("expected ErrClassFull, got %v", err)
	}

	for i := 0; i < 2; i++ {
		cancelled, err := service.CancelBooking(f.ctx, 1, booking.ID)
		if err != nil {
			t.Fatalf("CancelBooking #%d: %v", i+1, err)
		}
		if cancelled.Status != models.BookingStatusCancelled {
			t.Fatalf("expected cancelled status, got %q", cancelled.Status)
		}
	}

	if _, err := service.CreateBooking(f.ctx, 2, class.ID); err != nil {
		t.Fatalf("expected freed seat to be bookable, got %v", err)
	}

	want := []string{events.BookingCreated, events.BookingCancelled, events.BookingCreated}
	if got := f.publisher.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
}

// racingBookings behaves as if a concurrent transaction inserted the same
// (class, user) row between the duplicate check and the insert.
type racingBookings struct {
	repository.BookingStore
}

func (racingBookings) GetByClassAndUser(context.Context, models.ID, models.ID) (*models.Booking, error) {
	return nil, repository.ErrNotFound
}

func (racingBookings) Create(context.Context, models.ID, models.ID) (*models.Booking, error) {
	return nil, errors.Join(repository.ErrConflict, errors.New("duplicate key value violates unique constraint"))
}

type racingTransactor struct {
	inner repository.Transactor
}

func (r racingTransactor) InTx(ctx context.Context, fn func(repository.Stores) error) error {
	return r.inner.InTx(ctx, func(st repository.Stores) error {
		st.Bookings = racingBookings{BookingStore: st.Bookings}
		return fn(st)
	})
}

func TestCreateBookingTranslatesUniqueViolation(t *testing.T) {
	f := newFixture(t)
	class := f.class(100, testNow.Add(24*time.Hour), time.Hour, 10)
	f.activeMembership(1, 4)

	service := NewBookingService(racingTransactor{inner: f.store}, f.clock, f.publisher, models.DefaultMembershipSelection)
	booking, err := service.CreateBooking(f.ctx, 1, class.ID)
	if !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	if booking != nil {
		t.Fatalf("expected no booking, got %+v", booking)
	}

	list, err := f.bookingService().ListBookings(f.ctx, 1, "")
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no committed booking, got %d", len(list))
	}
	if got := f.publisher.types(); len(got) != 0 {
		t.Fatalf("expected no events, got %v", got)
	}
}

func TestListBookingsAttachesClasses(t *testing.T) {
	f := newFixture(t)
	service := f.bookingService()
	later := f.class(100, testNow.Add(48*time.Hour), time.Hour, 10)
	sooner := f.class(101, testNow.Add(24*time.Hour), time.Hour, 10)
	f.activeMembership(1, 4)

	for _, id := range []models.ID{later.ID, sooner.ID} {
		if _, err := service.CreateBooking(f.ctx, 1, id); err != nil {
			t.Fatalf("CreateBooking: %v", err)
		}
	}

	list, err := service.ListBookings(f.ctx, 1, "")
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(list))
	}
	if list[0].Class == nil || list[0].Class.ID != sooner.ID {
		t.Fatalf("expected sooner class first, got %+v", list[0].Class)
	}

	if _, err := service.ListBookings(f.ctx, 1, "pending"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}
