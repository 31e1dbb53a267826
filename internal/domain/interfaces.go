package domain

import (
	"context"
)

// Repository interfaces
type BookingRepository interface {
	// GetAffectedUsers returns every userID that should hear about a change
	// to the booking: the owner plus any staff watching it. May be empty.
	GetAffectedUsers(ctx context.Context, bookingID string) ([]string, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	MarkRead(ctx context.Context, userID, notificationID string) error
}

// Auth interface
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (userID string, err error)
}

// Event interfaces
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event *BookingEvent) error
}

type EventSubscriber interface {
	SubscribeToBookingEvents(ctx context.Context, handler BookingEventHandler) error
}

type BookingEventHandler func(event *BookingEvent) error

// Notification interfaces
type UserNotifier interface {
	SendToUser(userID string, event OutboundEvent) error
}

type Broadcaster interface {
	Broadcast(event OutboundEvent, excludeUserID string)
}

type BookingNotifier interface {
	NotifyBookingEvent(ctx context.Context, kind BookingEventKind, booking *Booking) error
}

// WebSocket interfaces
type Connection interface {
	Send(event OutboundEvent) error
	Close() error
	UserID() string
	Alive() bool
	SetAlive(alive bool)
}

type ConnectionRegistry interface {
	Register(conn Connection)
	Unregister(conn Connection)
	Get(userID string) (Connection, bool)
	ForEach(fn func(conn Connection))
	Len() int
}
