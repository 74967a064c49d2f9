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
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

// CancelCutoff is how long before class start a booking stops being cancellable.
const CancelCutoff = 2 * time.Hour

type BookingService struct {
	tx        repository.Transactor
	clock     clock.Clock
	publisher events.Publisher
	selection models.MembershipSelection
}

func NewBookingService(
	tx repository.Transactor,
	clk clock.Clock,
	publisher events.Publisher,
	selection models.MembershipSelection,
) *BookingService {
	if clk == nil {
		clk = clock.System()
	}
	if publisher == nil {
		publisher = events.Nop()
	}
	if selection == "" {
		selection = models.DefaultMembershipSelection
	}
	return &BookingService{tx: tx, clock: clk, publisher: publisher, selection: selection}
}

// CreateBooking reserves a seat for userID. The class row stays locked until
// commit, so concurrent bookings for the last seat are decided one at a time.
// No session is consumed here; that happens at check-in.
func (s *BookingService) CreateBooking(ctx context.Context, userID, classID models.ID) (booking *models.Booking, err error) {
	ctx, span := startSpan(ctx, "booking.create",
		attribute.Int64("gym.user_id", int64(userID)),
		attribute.Int64("gym.class_id", int64(classID)),
	)
	defer func() { endSpan(span, err) }()

	if userID <= 0 || classID <= 0 {
		return nil, invalidf("class_id is required")
	}

	now := s.clock.Now()
	err = s.tx.InTx(ctx, func(st repository.Stores) error {
		if _, err := st.Memberships.FindUsable(ctx, userID, now, s.selection); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoMembership
			}
			return err
		}

		class, err := st.Classes.GetByIDForUpdate(ctx, classID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			return err
		}

		booked, err := st.Bookings.CountByClass(ctx, classID, models.BookingStatusBooked)
		if err != nil {
			return err
		}
		if booked >= class.Capacity {
			return ErrClassFull
		}

		if _, err := st.Bookings.GetByClassAndUser(ctx, classID, userID); err == nil {
			return ErrAlreadyBooked
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		created, err := st.Bookings.Create(ctx, classID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadyBooked
			}
			return err
		}
		booking = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[booking] user %s booked class %s", userID, classID)
	events.Emit(ctx, s.publisher, events.Event{
		Type:       events.BookingCreated,
		UserID:     userID,
		OccurredAt: now,
		Data:       booking,
	})
	return booking, nil
}

// CancelBooking releases a seat. Cancelling twice returns the cancelled row
// without emitting a second event. The member's session count is never touched.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID models.ID) (booking *models.Booking, err error) {
	ctx, span := startSpan(ctx, "booking.cancel",
		attribute.Int64("gym.user_id", int64(userID)),
		attribute.Int64("gym.booking_id", int64(bookingID)),
	)
	defer func() { endSpan(span, err) }()

	if userID <= 0 || bookingID <= 0 {
		return nil, ErrBookingNotFound
	}

	now := s.clock.Now()
	changed := false
	err = s.tx.InTx(ctx, func(st repository.Stores) error {
		current, err := st.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if current.UserID != userID {
			return ErrBookingNotFound
		}
		if current.Status == models.BookingStatusCancelled {
			booking = current
			return nil
		}

		class, err := st.Classes.GetByID(ctx, current.ClassID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			return err
		}
		if class.StartTime.Sub(now) <= CancelCutoff {
			return ErrCancelTooLate
		}

		updated, err := st.Bookings.UpdateStatusIfCurrent(ctx, bookingID, models.BookingStatusBooked, models.BookingStatusCancelled)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// lost a race with another cancel
				again, getErr := st.Bookings.GetByID(ctx, bookingID)
				if getErr != nil {
					return getErr
				}
				booking = again
				return nil
			}
			return err
		}
		booking = updated
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		log.Printf("[booking] user %s cancelled booking %s", userID, bookingID)
		events.Emit(ctx, s.publisher, events.Event{
			Type:       events.BookingCancelled,
			UserID:     userID,
			OccurredAt: now,
			Data:       booking,
		})
	}
	return booking, nil
}

// ListBookings returns the user's bookings with their class, ordered by class
// start. status filters when non-empty.
func (s *BookingService) ListBookings(ctx context.Context, userID models.ID, status string) ([]models.BookingDetail, error) {
	switch status {
	case "", models.BookingStatusBooked, models.BookingStatusCancelled:
	default:
		return nil, invalidf("unknown status %q", status)
	}

	details := make([]models.BookingDetail, 0)
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		bookings, err := st.Bookings.ListByUser(ctx, userID, status)
		if err != nil {
			return err
		}
		classes := make(map[models.ID]*models.Class)
		for _, booking := range bookings {
			class, ok := classes[booking.ClassID]
			if !ok {
				class, err = st.Classes.GetByID(ctx, booking.ClassID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return err
				}
				classes[booking.ClassID] = class
			}
			details = append(details, models.BookingDetail{Booking: booking, Class: class})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}
