package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"travel-system/internal/domain"
	"travel-system/pkg/logger"
)

// EventHandler is the ingest surface the booking/notification services call
// after mutating their own state. Events are validated here and published on
// the booking events channel; the relay picks them up for socket delivery.
type EventHandler struct {
	publisher domain.EventPublisher
	log       logger.Logger
}

type BookingEventRequest struct {
	Event   string          `json:"event"`
	Booking *domain.Booking `json:"booking"`
}

func NewEventHandler(publisher domain.EventPublisher, log logger.Logger) *EventHandler {
	return &EventHandler{
		publisher: publisher,
		log:       log,
	}
}

func (h *EventHandler) IngestBookingEvent(c echo.Context) error {
	var req BookingEventRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind booking event", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.Event == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Event kind required"})
	}
	if req.Booking == nil || req.Booking.ID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Booking payload required"})
	}
	if req.Booking.UserID == "" {
		// Every envelope must carry its owning user; there is nobody to
		// deliver an ownerless event to.
		h.log.Error("Rejected booking event without owning user",
			"event", req.Event, "booking_id", req.Booking.ID)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Booking owner required"})
	}

	event := &domain.BookingEvent{
		Kind:      domain.BookingEventKind(req.Event),
		Booking:   req.Booking,
		Timestamp: time.Now().UTC(),
	}

	if err := h.publisher.PublishBookingEvent(c.Request().Context(), event); err != nil {
		h.log.Error("Failed to publish booking event",
			"event", req.Event, "booking_id", req.Booking.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to publish event"})
	}

	h.log.Info("Booking event accepted", "event", req.Event,
		"booking_id", req.Booking.ID, "user_id", req.Booking.UserID)
	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}
