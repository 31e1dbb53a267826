package domain

import (
	"encoding/json"
	"time"
)

type Booking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	HotelID   string    `json:"hotel_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type BookingEventKind string

const (
	BookingCreated   BookingEventKind = "created"
	BookingUpdated   BookingEventKind = "updated"
	BookingCancelled BookingEventKind = "cancelled"
)

type BookingEvent struct {
	Kind      BookingEventKind `json:"kind"`
	Booking   *Booking         `json:"booking"`
	Timestamp time.Time        `json:"timestamp"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// InboundMessage is one decoded client frame. Data stays raw until the
// matching handler decodes it.
type InboundMessage struct {
	Type   string          `json:"type"`
	Action string          `json:"action,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Inbound message types and system actions.
const (
	MessageSystem           = "system"
	MessageBookingUpdate    = "booking:update"
	MessageNotificationRead = "notification:read"
	MessageChat             = "chat:message"

	ActionPing    = "ping"
	ActionPong    = "pong"
	ActionWelcome = "welcome"
)

// OutboundEvent is one frame pushed to a client.
type OutboundEvent struct {
	Type      string      `json:"type"`
	Action    string      `json:"action,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// Outbound event types.
const (
	EventSystem           = "system"
	EventError            = "error"
	EventBookingCreated   = "booking-created"
	EventBookingUpdated   = "booking-updated"
	EventBookingCancelled = "booking-cancelled"
	EventBookingGeneric   = "booking-event"
)

// SystemEvent builds a system frame (welcome, ping) stamped with the
// current time.
func SystemEvent(action string) OutboundEvent {
	return OutboundEvent{
		Type:      EventSystem,
		Action:    action,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorEvent builds the typed error frame sent back on the connection that
// caused the failure.
func ErrorEvent(message string) OutboundEvent {
	return OutboundEvent{
		Type: EventError,
		Data: map[string]string{"message": message},
	}
}

// OutboundType maps a booking event kind to the wire event type.
func (k BookingEventKind) OutboundType() string {
	switch k {
	case BookingCreated:
		return EventBookingCreated
	case BookingUpdated:
		return EventBookingUpdated
	case BookingCancelled:
		return EventBookingCancelled
	default:
		return EventBookingGeneric
	}
}
