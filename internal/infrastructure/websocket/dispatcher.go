package websocket

import (
	"context"
	"time"

	"travel-system/internal/domain"
	"travel-system/pkg/logger"
)

const affectedLookupTimeout = 10 * time.Second

// Dispatcher is the outbound side of the hub: targeted delivery, broadcast,
// and the typed booking notifications called by the request handlers and the
// event relay. Delivery is at-most-once, best-effort while connected; there
// is no queueing and no retry.
type Dispatcher struct {
	registry domain.ConnectionRegistry
	bookings domain.BookingRepository
	log      logger.Logger
}

func NewDispatcher(registry domain.ConnectionRegistry, bookings domain.BookingRepository,
	log logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		bookings: bookings,
		log:      log,
	}
}

// SendToUser delivers one event to the user's connection if there is one.
// An offline user is not an error; the event is silently dropped.
func (d *Dispatcher) SendToUser(userID string, event domain.OutboundEvent) error {
	conn, exists := d.registry.Get(userID)
	if !exists {
		d.log.Debug("User not connected, dropping event", "user_id", userID, "type", event.Type)
		return nil
	}

	if err := conn.Send(event); err != nil {
		d.log.Error("Failed to send event", "user_id", userID, "type", event.Type, "error", err)
		return err
	}
	return nil
}

// Broadcast sends the event to every registered connection, skipping
// excludeUserID if non-empty.
func (d *Dispatcher) Broadcast(event domain.OutboundEvent, excludeUserID string) {
	d.registry.ForEach(func(conn domain.Connection) {
		if excludeUserID != "" && conn.UserID() == excludeUserID {
			return
		}
		if err := conn.Send(event); err != nil {
			d.log.Error("Failed to broadcast event", "user_id", conn.UserID(),
				"type", event.Type, "error", err)
		}
	})
}

// NotifyBookingEvent pushes a booking lifecycle event to its owner and then,
// asynchronously, to every other affected user (staff watching the booking).
// The owner delivery happens synchronously before this returns; the fan-out
// is best-effort after the fact and a failed affected-users lookup never
// takes back the owner's copy.
func (d *Dispatcher) NotifyBookingEvent(ctx context.Context, kind domain.BookingEventKind,
	booking *domain.Booking) error {
	if booking == nil || booking.UserID == "" {
		d.log.Error("Booking event without owning user, dropping", "kind", kind)
		return nil
	}

	event := domain.OutboundEvent{
		Type:      kind.OutboundType(),
		Data:      booking,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := d.SendToUser(booking.UserID, event); err != nil {
		d.log.Error("Failed to notify booking owner", "user_id", booking.UserID,
			"booking_id", booking.ID, "error", err)
	}

	go d.notifyAffected(booking.ID, booking.UserID, event)

	return nil
}

func (d *Dispatcher) notifyAffected(bookingID, ownerID string, event domain.OutboundEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), affectedLookupTimeout)
	defer cancel()

	users, err := d.bookings.GetAffectedUsers(ctx, bookingID)
	if err != nil {
		d.log.Error("Failed to resolve affected users", "booking_id", bookingID, "error", err)
		return
	}

	for _, userID := range users {
		if userID == ownerID {
			// Owner was already notified synchronously.
			continue
		}
		d.SendToUser(userID, event)
	}
}
