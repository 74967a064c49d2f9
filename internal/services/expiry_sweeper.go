package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type lapsedExpirer interface {
	ExpireLapsed(ctx context.Context) (int64, error)
}

// ExpirySweeper periodically writes status=expired on lapsed memberships.
// Usability is already decided on read; the sweep keeps stored status honest
// for reporting.
type ExpirySweeper struct {
	cron    *cron.Cron
	expirer lapsedExpirer
	timeout time.Duration
}

func NewExpirySweeper(expirer lapsedExpirer, schedule string) (*ExpirySweeper, error) {
	s := &ExpirySweeper{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		expirer: expirer,
		timeout: 2 * time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("schedule expiry sweep %q: %w", schedule, err)
	}
	return s, nil
}

func (s *ExpirySweeper) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish or for ctx to end.
func (s *ExpirySweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *ExpirySweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.expirer.ExpireLapsed(ctx); err != nil {
		log.Printf("[sweep] expire memberships: %v", err)
	}
}
