package events

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/models"
)

const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	CheckinRecorded  = "checkin.recorded"
)

// Event is a fact that already committed. UserID is the member the event
// concerns and decides who may see it on the live feed.
type Event struct {
	Type       string    `json:"type"`
	UserID     models.ID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type nop struct{}

// Nop drops every event.
func Nop() Publisher {
	return nop{}
}

func (nop) Publish(context.Context, Event) error {
	return nil
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// JSONPublisher is satisfied by broker clients that route on a key.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type broker struct {
	client JSONPublisher
}

// ToBroker publishes events with their type as the routing key.
func ToBroker(client JSONPublisher) Publisher {
	return broker{client: client}
}

func (b broker) Publish(ctx context.Context, event Event) error {
	return b.client.PublishJSON(ctx, event.Type, event)
}

// Emit publishes event and only logs a failure. Callers have already
// committed, so delivery problems must not turn into request errors.
func Emit(ctx context.Context, publisher Publisher, event Event) {
	if publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Printf("[events] publish %s for user %s: %v", event.Type, event.UserID, err)
	}
}
