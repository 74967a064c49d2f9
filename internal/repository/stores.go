package repository

import (
	"context"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/models"
)

type CreateClassInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Capacity  int
	TrainerID models.ID
	BranchID  models.ID
}

type ClassListFilter struct {
	From      *time.Time
	To        *time.Time
	TrainerID models.ID
	BranchID  models.ID
}

type CreateMembershipInput struct {
	UserID            models.ID
	PlanID            models.ID
	StartDate         time.Time
	EndDate           time.Time
	RemainingSessions int
	Status            string
}

type UpdateMembershipInput struct {
	EndDate           time.Time
	RemainingSessions int
	Status            string
}

type CreateCheckinInput struct {
	UserID       models.ID
	BranchID     models.ID
	MembershipID models.ID
	Method       string
	Status       string
	CheckedAt    time.Time
}

type CreatePlanInput struct {
	Name         string
	Price        float64
	DurationDays int
	Sessions     int
}

type ClassStore interface {
	Create(ctx context.Context, input CreateClassInput) (*models.Class, error)
	GetByID(ctx context.Context, id models.ID) (*models.Class, error)
	GetByIDForUpdate(ctx context.Context, id models.ID) (*models.Class, error)
	Update(ctx context.Context, class *models.Class) (*models.Class, error)
	Delete(ctx context.Context, id models.ID) error
	List(ctx context.Context, filter ClassListFilter) ([]models.Class, error)
	LockTrainer(ctx context.Context, trainerID models.ID) error
	HasTrainerConflict(ctx context.Context, trainerID models.ID, start, end time.Time, excludeClassID models.ID) (bool, error)
}

type BookingStore interface {
	Create(ctx context.Context, classID, userID models.ID) (*models.Booking, error)
	GetByID(ctx context.Context, id models.ID) (*models.Booking, error)
	GetByClassAndUser(ctx context.Context, classID, userID models.ID) (*models.Booking, error)
	CountByClass(ctx context.Context, classID models.ID, status string) (int, error)
	UpdateStatusIfCurrent(ctx context.Context, id models.ID, currentStatus, nextStatus string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID models.ID, status string) ([]models.Booking, error)
	ListByClass(ctx context.Context, classID models.ID) ([]models.Booking, error)
}

type MembershipStore interface {
	Create(ctx context.Context, input CreateMembershipInput) (*models.Membership, error)
	GetByID(ctx context.Context, id models.ID) (*models.Membership, error)
	GetByIDForUpdate(ctx context.Context, id models.ID) (*models.Membership, error)
	FindUsable(ctx context.Context, userID models.ID, now time.Time, order models.MembershipSelection) (*models.Membership, error)
	FindUsableForUpdate(ctx context.Context, userID models.ID, now time.Time, order models.MembershipSelection) (*models.Membership, error)
	DecrementSession(ctx context.Context, id models.ID) (*models.Membership, error)
	Update(ctx context.Context, id models.ID, input UpdateMembershipInput) (*models.Membership, error)
	ListByUser(ctx context.Context, userID models.ID) ([]models.Membership, error)
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}

type CheckinStore interface {
	Create(ctx context.Context, input CreateCheckinInput) (*models.Checkin, error)
	ListByUser(ctx context.Context, userID models.ID, limit, offset int) ([]models.Checkin, int, error)
}

type PlanStore interface {
	Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error)
	GetByID(ctx context.Context, id models.ID) (*models.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]models.Plan, error)
	SetActive(ctx context.Context, id models.ID, active bool) (*models.Plan, error)
}

// Stores is the set of repositories bound to one transaction.
type Stores struct {
	Classes     ClassStore
	Bookings    BookingStore
	Memberships MembershipStore
	Checkins    CheckinStore
	Plans       PlanStore
}

// Transactor runs fn inside a single atomic unit. Returning an error from fn
// rolls back every write made through the given Stores.
type Transactor interface {
	InTx(ctx context.Context, fn func(Stores) error) error
}
