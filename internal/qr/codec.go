package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/google/uuid"
)

const DefaultTTL = 60 * time.Second

// Codec issues and verifies signed check-in tokens. It keeps no state; forging
// a token requires the secret.
type Codec struct {
	secret     []byte
	clock      clock.Clock
	defaultTTL time.Duration
}

func NewCodec(secret string, clk clock.Clock, defaultTTL time.Duration) *Codec {
	if clk == nil {
		clk = clock.System()
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Codec{secret: []byte(secret), clock: clk, defaultTTL: defaultTTL}
}

// Issue signs a fresh token for userID that expires ttl from now. A
// non-positive ttl falls back to the codec default. exp has whole-second
// granularity and is rounded up, so a token never expires before its ttl.
func (c *Codec) Issue(userID models.ID, ttl time.Duration) models.QrPayload {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	payload := models.QrPayload{
		UserID:    userID,
		Nonce:     uuid.NewString(),
		ExpiresAt: ceilUnix(c.clock.Now().Add(ttl)),
	}
	payload.Signature = c.sign(payload)
	return payload
}

// Verify reports whether payload is complete, unexpired and carries a valid
// signature. The token stays valid through the exp second itself.
func (c *Codec) Verify(payload models.QrPayload) bool {
	if payload.UserID <= 0 || payload.Nonce == "" || payload.ExpiresAt <= 0 || payload.Signature == "" {
		return false
	}
	if c.clock.Now().After(time.Unix(payload.ExpiresAt, 0)) {
		return false
	}
	provided, err := hex.DecodeString(payload.Signature)
	if err != nil {
		return false
	}
	return hmac.Equal(provided, c.mac(payload))
}

// ExpiresAt returns the instant after which payload no longer verifies.
func ExpiresAt(payload models.QrPayload) time.Time {
	return time.Unix(payload.ExpiresAt, 0).UTC()
}

func ceilUnix(t time.Time) int64 {
	if t.Nanosecond() > 0 {
		return t.Unix() + 1
	}
	return t.Unix()
}

func (c *Codec) sign(payload models.QrPayload) string {
	return hex.EncodeToString(c.mac(payload))
}

func (c *Codec) mac(payload models.QrPayload) []byte {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(canonical(payload)))
	return h.Sum(nil)
}

// canonical is the signed form: userId|nonce|exp.
func canonical(payload models.QrPayload) string {
	return payload.UserID.String() + "|" + payload.Nonce + "|" + strconv.FormatInt(payload.ExpiresAt, 10)
}
