package services

import (
	"context"
	"fmt"
	"time"

	"travel-system/internal/domain"
	"travel-system/pkg/logger"
	"travel-system/pkg/utils"
)

const relayTimeout = 10 * time.Second

// EventRelay connects the booking backend's event stream to the hub: every
// booking event gets a persisted notification row for the owner and is then
// handed to the dispatcher for socket delivery.
type EventRelay struct {
	notifier      domain.BookingNotifier
	notifications domain.NotificationRepository
	log           logger.Logger
}

func NewEventRelay(notifier domain.BookingNotifier, notifications domain.NotificationRepository,
	log logger.Logger) *EventRelay {
	return &EventRelay{
		notifier:      notifier,
		notifications: notifications,
		log:           log,
	}
}

func (er *EventRelay) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	er.log.Info("Starting booking event relay")
	return subscriber.SubscribeToBookingEvents(ctx, er.HandleBookingEvent)
}

func (er *EventRelay) HandleBookingEvent(event *domain.BookingEvent) error {
	if event.Booking == nil {
		return fmt.Errorf("booking event without booking payload")
	}
	if event.Booking.UserID == "" {
		// The dispatcher would drop it too; reject early with context.
		er.log.Error("Booking event without owning user", "kind", event.Kind, "booking_id", event.Booking.ID)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	notification := &domain.Notification{
		ID:        utils.GenerateID("notif"),
		UserID:    event.Booking.UserID,
		Type:      event.Kind.OutboundType(),
		Message:   fmt.Sprintf("Booking %s %s", event.Booking.ID, event.Kind),
		CreatedAt: time.Now(),
	}
	if err := er.notifications.Create(ctx, notification); err != nil {
		// Persistence is an inbox nicety; live delivery still proceeds.
		er.log.Error("Failed to persist notification", "user_id", event.Booking.UserID, "error", err)
	}

	return er.notifier.NotifyBookingEvent(ctx, event.Kind, event.Booking)
}
