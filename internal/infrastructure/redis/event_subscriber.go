package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"travel-system/internal/domain"
	"travel-system/pkg/logger"

	"github.com/go-redis/redis/v8"
)

type RedisEventSubscriber struct {
	client *redis.Client
	log    logger.Logger
}

func NewEventSubscriber(client *redis.Client, log logger.Logger) *RedisEventSubscriber {
	return &RedisEventSubscriber{
		client: client,
		log:    log,
	}
}

// SubscribeToBookingEvents blocks consuming the booking events channel until
// ctx is cancelled. A payload that fails to parse or a handler error is
// logged and skipped; the subscription itself stays up.
func (r *RedisEventSubscriber) SubscribeToBookingEvents(ctx context.Context, handler domain.BookingEventHandler) error {
	pubsub := r.client.Subscribe(ctx, bookingEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	r.log.Info("Subscribed to booking events")

	for {
		select {
		case msg := <-ch:
			event, err := parseBookingEvent(msg.Payload)
			if err != nil {
				r.log.Error("Failed to parse booking event", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(event); err != nil {
				r.log.Error("Failed to handle booking event", "kind", event.Kind, "error", err)
			}

		case <-ctx.Done():
			r.log.Info("Booking event subscriber stopped")
			return ctx.Err()
		}
	}
}

func parseBookingEvent(payload string) (*domain.BookingEvent, error) {
	var event domain.BookingEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Booking == nil {
		return nil, fmt.Errorf("booking event without booking payload: %s", payload)
	}

	return &event, nil
}
