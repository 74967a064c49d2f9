package qr

import (
	"context"
	"sync"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
)

// NonceLedger remembers presented tokens until they expire so that a captured
// token cannot be replayed inside its TTL.
type NonceLedger interface {
	// Claim records (userID, nonce) until the given instant. It returns false
	// when the pair was already claimed.
	Claim(ctx context.Context, userID models.ID, nonce string, until time.Time) (bool, error)
	// Release forgets a claim so the token can be presented again.
	Release(ctx context.Context, userID models.ID, nonce string) error
}

type ledgerKey struct {
	userID models.ID
	nonce  string
}

// pruneInterval bounds how often Claim sweeps expired entries.
const pruneInterval = 30 * time.Second

// MemoryLedger is a process-local NonceLedger. Expired entries are ignored on
// lookup and swept at most once per pruneInterval.
type MemoryLedger struct {
	mu        sync.Mutex
	clock     clock.Clock
	entries   map[ledgerKey]time.Time
	nextPrune time.Time
}

func NewMemoryLedger(clk clock.Clock) *MemoryLedger {
	if clk == nil {
		clk = clock.System()
	}
	return &MemoryLedger{clock: clk, entries: make(map[ledgerKey]time.Time)}
}

func (l *MemoryLedger) Claim(_ context.Context, userID models.ID, nonce string, until time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if !now.Before(l.nextPrune) {
		l.prune(now)
		l.nextPrune = now.Add(pruneInterval)
	}

	key := ledgerKey{userID: userID, nonce: nonce}
	if expiry, seen := l.entries[key]; seen && !now.After(expiry) {
		return false, nil
	}
	l.entries[key] = until
	return true, nil
}

func (l *MemoryLedger) prune(now time.Time) {
	for key, expiry := range l.entries {
		if now.After(expiry) {
			delete(l.entries, key)
		}
	}
}

func (l *MemoryLedger) Release(_ context.Context, userID models.ID, nonce string) error {
	l.mu.Lock()
	delete(l.entries, ledgerKey{userID: userID, nonce: nonce})
	l.mu.Unlock()
	return nil
}

func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
