package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/internal/repository"
)

type ClassService struct {
	tx    repository.Transactor
	clock clock.Clock
}

func NewClassService(tx repository.Transactor, clk clock.Clock) *ClassService {
	if clk == nil {
		clk = clock.System()
	}
	return &ClassService{tx: tx, clock: clk}
}

type CreateClassInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Capacity  int
	TrainerID models.ID
	BranchID  models.ID
}

// UpdateClassInput holds a partial update; nil fields keep their value.
type UpdateClassInput struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Capacity  *int
	TrainerID *models.ID
	BranchID  *models.ID
}

type ListClassesInput struct {
	From      *time.Time
	To        *time.Time
	TrainerID models.ID
	BranchID  models.ID
}

// HasConflict reports whether the trainer already teaches a class overlapping
// [start, end). excludeClassID skips the class being rescheduled; pass 0 on create.
func (s *ClassService) HasConflict(
	ctx context.Context,
	trainerID models.ID,
	start time.Time,
	end time.Time,
	excludeClassID models.ID,
) (bool, error) {
	var conflict bool
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		var err error
		conflict, err = st.Classes.HasTrainerConflict(ctx, trainerID, start, end, excludeClassID)
		return err
	})
	return conflict, err
}

// checkTrainerSlot serialises writers for one trainer and rejects overlapping
// slots. It must run inside the transaction that writes the class.
func checkTrainerSlot(
	ctx context.Context,
	classes repository.ClassStore,
	trainerID models.ID,
	start time.Time,
	end time.Time,
	excludeClassID models.ID,
) error {
	if err := classes.LockTrainer(ctx, trainerID); err != nil {
		return err
	}
	conflict, err := classes.HasTrainerConflict(ctx, trainerID, start, end, excludeClassID)
	if err != nil {
		return err
	}
	if conflict {
		return ErrTrainerBusy
	}
	return nil
}

func validateClassFields(title string, start, end time.Time, capacity int, trainerID, branchID models.ID) error {
	if strings.TrimSpace(title) == "" {
		return invalidf("title is required")
	}
	if capacity <= 0 {
		return invalidf("capacity must be positive")
	}
	if trainerID <= 0 || branchID <= 0 {
		return invalidf("trainer_id and branch_id are required")
	}
	if start.IsZero() || end.IsZero() {
		return invalidf("start_time and end_time are required")
	}
	if !start.Before(end) {
		return ErrInvalidTime
	}
	return nil
}

func (s *ClassService) CreateClass(ctx context.Context, input CreateClassInput) (class *models.Class, err error) {
	ctx, span := startSpan(ctx, "class.create", attribute.Int64("gym.trainer_id", int64(input.TrainerID)))
	defer func() { endSpan(span, err) }()

	input.Title = strings.TrimSpace(input.Title)
	if err := validateClassFields(input.Title, input.StartTime, input.EndTime, input.Capacity, input.TrainerID, input.BranchID); err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(st repository.Stores) error {
		if err := checkTrainerSlot(ctx, st.Classes, input.TrainerID, input.StartTime, input.EndTime, 0); err != nil {
			return err
		}
		created, err := st.Classes.Create(ctx, repository.CreateClassInput{
			Title:     input.Title,
			StartTime: input.StartTime.UTC(),
			EndTime:   input.EndTime.UTC(),
			Capacity:  input.Capacity,
			TrainerID: input.TrainerID,
			BranchID:  input.BranchID,
		})
		if err != nil {
			return err
		}
		class = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) UpdateClass(ctx context.Context, id models.ID, input UpdateClassInput) (class *models.Class, err error) {
	ctx, span := startSpan(ctx, "class.update", attribute.Int64("gym.class_id", int64(id)))
	defer func() { endSpan(span, err) }()

	if id <= 0 {
		return nil, ErrClassNotFound
	}

	err = s.tx.InTx(ctx, func(st repository.Stores) error {
		current, err := st.Classes.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			return err
		}

		next := *current
		if input.Title != nil {
			next.Title = strings.TrimSpace(*input.Title)
		}
		if input.StartTime != nil {
			next.StartTime = input.StartTime.UTC()
		}
		if input.EndTime != nil {
			next.EndTime = input.EndTime.UTC()
		}
		if input.Capacity != nil {
			next.Capacity = *input.Capacity
		}
		if input.TrainerID != nil {
			next.TrainerID = *input.TrainerID
		}
		if input.BranchID != nil {
			next.BranchID = *input.BranchID
		}
		if err := validateClassFields(next.Title, next.StartTime, next.EndTime, next.Capacity, next.TrainerID, next.BranchID); err != nil {
			return err
		}

		if next.Capacity < current.Capacity {
			booked, err := st.Bookings.CountByClass(ctx, id, models.BookingStatusBooked)
			if err != nil {
				return err
			}
			if next.Capacity < booked {
				return ErrCapacityTooSmall
			}
		}

		rescheduled := !next.StartTime.Equal(current.StartTime) ||
			!next.EndTime.Equal(current.EndTime) ||
			next.TrainerID != current.TrainerID
		if rescheduled {
			if err := checkTrainerSlot(ctx, st.Classes, next.TrainerID, next.StartTime, next.EndTime, id); err != nil {
				return err
			}
		}

		updated, err := st.Classes.Update(ctx, &next)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			return err
		}
		class = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

// DeleteClass removes a class that has never been booked. Cancelled bookings
// still block deletion so the audit trail stays intact.
func (s *ClassService) DeleteClass(ctx context.Context, id models.ID) (err error) {
	ctx, span := startSpan(ctx, "class.delete", attribute.Int64("gym.class_id", int64(id)))
	defer func() { endSpan(span, err) }()

	return s.tx.InTx(ctx, func(st repository.Stores) error {
		if _, err := st.Classes.GetByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			return err
		}
		count, err := st.Bookings.CountByClass(ctx, id, "")
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrClassHasBookings
		}
		if err := st.Classes.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			if errors.Is(err, repository.ErrConflict) {
				return ErrClassHasBookings
			}
			return err
		}
		return nil
	})
}

func (s *ClassService) GetClass(ctx context.Context, id models.ID) (*models.ClassDetail, error) {
	var detail *models.ClassDetail
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		class, err := st.Classes.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			return err
		}
		booked, err := st.Bookings.CountByClass(ctx, id, models.BookingStatusBooked)
		if err != nil {
			return err
		}
		detail = &models.ClassDetail{Class: *class, BookedCount: booked}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *ClassService) ListClasses(ctx context.Context, input ListClassesInput) ([]models.ClassDetail, error) {
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return nil, ErrInvalidTime
	}

	details := make([]models.ClassDetail, 0)
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		classes, err := st.Classes.List(ctx, repository.ClassListFilter{
			From:      input.From,
			To:        input.To,
			TrainerID: input.TrainerID,
			BranchID:  input.BranchID,
		})
		if err != nil {
			return err
		}
		for _, class := range classes {
			booked, err := st.Bookings.CountByClass(ctx, class.ID, models.BookingStatusBooked)
			if err != nil {
				return err
			}
			details = append(details, models.ClassDetail{Class: class, BookedCount: booked})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// ListClassBookings returns the roster of a class, cancelled rows included.
func (s *ClassService) ListClassBookings(ctx context.Context, classID models.ID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.tx.InTx(ctx, func(st repository.Stores) error {
		if _, err := st.Classes.GetByID(ctx, classID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrClassNotFound
			}
			return err
		}
		var err error
		bookings, err = st.Bookings.ListByClass(ctx, classID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
