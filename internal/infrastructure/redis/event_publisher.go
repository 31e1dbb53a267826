package redis

import (
	"context"
	"encoding/json"

	"travel-system/internal/domain"

	"github.com/go-redis/redis/v8"
)

const bookingEventsChannel = "booking_events"

type EventPublisherImpl struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisherImpl {
	return &EventPublisherImpl{client: client}
}

func (r *EventPublisherImpl) PublishBookingEvent(ctx context.Context, event *domain.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, bookingEventsChannel, payload).Err()
}
