package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed Transactor.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func NewStores(db DBTX) Stores {
	return Stores{
		Classes:     NewClassRepository(db),
		Bookings:    NewBookingRepository(db),
		Memberships: NewMembershipRepository(db),
		Checkins:    NewCheckinRepository(db),
		Plans:       NewPlanRepository(db),
	}
}

func (s *Store) InTx(ctx context.Context, fn func(Stores) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(NewStores(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
