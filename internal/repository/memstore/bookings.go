package memstore

import (
	"context"
	"sort"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

type bookingRepo struct {
	st    *state
	clock clock.Clock
}

func (r *bookingRepo) Create(_ context.Context, classID, userID models.ID) (*models.Booking, error) {
	if _, ok := r.st.classes[classID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, existing := range r.st.bookings {
		if existing.ClassID == classID && existing.UserID == userID {
			return nil, repository.ErrConflict
		}
	}
	now := r.clock.Now()
	booking := models.Booking{
		ID:        r.st.nextID(),
		ClassID:   classID,
		UserID:    userID,
		Status:    models.BookingStatusBooked,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.st.bookings[booking.ID] = booking
	return &booking, nil
}

func (r *bookingRepo) GetByID(_ context.Context, id models.ID) (*models.Booking, error) {
	booking, ok := r.st.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &booking, nil
}

func (r *bookingRepo) GetByClassAndUser(_ context.Context, classID, userID models.ID) (*models.Booking, error) {
	for _, booking := range r.st.bookings {
		if booking.ClassID == classID && booking.UserID == userID {
			found := booking
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *bookingRepo) CountByClass(_ context.Context, classID models.ID, status string) (int, error) {
	count := 0
	for _, booking := range r.st.bookings {
		if booking.ClassID == classID && (status == "" || booking.Status == status) {
			count++
		}
	}
	return count, nil
}

func (r *bookingRepo) UpdateStatusIfCurrent(
	_ context.Context,
	id models.ID,
	currentStatus string,
	nextStatus string,
) (*models.Booking, error) {
	booking, ok := r.st.bookings[id]
	if !ok || booking.Status != currentStatus {
		return nil, repository.ErrNotFound
	}
	booking.Status = nextStatus
	booking.UpdatedAt = r.clock.Now()
	r.st.bookings[id] = booking
	return &booking, nil
}

func (r *bookingRepo) ListByUser(_ context.Context, userID models.ID, status string) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	for _, booking := range r.st.bookings {
		if booking.UserID == userID && (status == "" || booking.Status == status) {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		ci, cj := r.st.classes[bookings[i].ClassID], r.st.classes[bookings[j].ClassID]
		if !ci.StartTime.Equal(cj.StartTime) {
			return ci.StartTime.Before(cj.StartTime)
		}
		return bookings[i].ID < bookings[j].ID
	})
	return bookings, nil
}

func (r *bookingRepo) ListByClass(_ context.Context, classID models.ID) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	for _, booking := range r.st.bookings {
		if booking.ClassID == classID {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}
