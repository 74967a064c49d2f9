package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/redis/go-redis/v9"
)

const nonceKeyPrefix = "gym:qr:nonce:"

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NonceLedger keeps claimed QR nonces in Redis so every API instance shares
// the same replay window.
type NonceLedger struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewNonceLedger(client redis.UniversalClient) *NonceLedger {
	return &NonceLedger{client: client, now: time.Now}
}

func nonceKey(userID models.ID, nonce string) string {
	return nonceKeyPrefix + userID.String() + ":" + nonce
}

func (l *NonceLedger) Claim(ctx context.Context, userID models.ID, nonce string, until time.Time) (bool, error) {
	ttl := until.Sub(l.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	ok, err := l.client.SetNX(ctx, nonceKey(userID, nonce), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim nonce: %w", err)
	}
	return ok, nil
}

func (l *NonceLedger) Release(ctx context.Context, userID models.ID, nonce string) error {
	if err := l.client.Del(ctx, nonceKey(userID, nonce)).Err(); err != nil {
		return fmt.Errorf("release nonce: %w", err)
	}
	return nil
}
