package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"travel-system/internal/domain"
	"travel-system/pkg/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

const handlerTimeout = 10 * time.Second

// Handler is the upgrade gate and the per-connection session loop. Identity
// is established before the socket exists: a request without a verifiable
// token never reaches the upgrade.
type Handler struct {
	verifier      domain.TokenVerifier
	registry      domain.ConnectionRegistry
	notifier      domain.UserNotifier
	bookings      domain.BookingRepository
	notifications domain.NotificationRepository
	log           logger.Logger
}

func NewHandler(verifier domain.TokenVerifier, registry domain.ConnectionRegistry,
	notifier domain.UserNotifier, bookings domain.BookingRepository,
	notifications domain.NotificationRepository, log logger.Logger) *Handler {
	return &Handler{
		verifier:      verifier,
		registry:      registry,
		notifier:      notifier,
		bookings:      bookings,
		notifications: notifications,
		log:           log,
	}
}

// HandleConnection serves GET /ws?token=... . A failed upgrade is terminal
// for the attempt; the client retries with a fresh request.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.verifier.VerifyToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			h.log.Info("Rejected connection - invalid token")
			http.Error(w, "invalid token", http.StatusUnauthorized)
		} else {
			h.log.Error("Token verification failed", "error", err)
			http.Error(w, "token verification failed", http.StatusInternalServerError)
		}
		return
	}

	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConn(sock, userID)
	h.registry.Register(conn)

	go h.readLoop(conn)
}

// readLoop is the session loop: one goroutine per connection, frames handled
// in arrival order. Only transport errors end the session; every
// message-level failure is answered on the same connection and the loop
// keeps going.
func (h *Handler) readLoop(conn *Conn) {
	defer func() {
		h.registry.Unregister(conn)
		conn.Close()
	}()

	// Welcome is a courtesy, not part of the handshake.
	if err := conn.Send(domain.SystemEvent(domain.ActionWelcome)); err != nil {
		h.log.Debug("Failed to send welcome", "user_id", conn.UserID(), "error", err)
	}

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			h.log.Debug("Connection read ended", "user_id", conn.UserID(), "error", err)
			break
		}

		var msg domain.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warn("Malformed inbound frame", "user_id", conn.UserID(), "error", err)
			if err := conn.Send(domain.ErrorEvent("malformed message")); err != nil {
				h.log.Debug("Failed to send error event", "user_id", conn.UserID(), "error", err)
			}
			continue
		}

		h.dispatch(conn, &msg)
	}
}

func (h *Handler) dispatch(conn *Conn, msg *domain.InboundMessage) {
	switch msg.Type {
	case domain.MessageSystem:
		h.handleSystem(conn, msg)
	case domain.MessageBookingUpdate:
		if err := h.handleBookingUpdate(conn, msg); err != nil {
			h.log.Error("Failed to handle booking update", "user_id", conn.UserID(), "error", err)
			conn.Send(domain.ErrorEvent("failed to process booking update"))
		}
	case domain.MessageNotificationRead:
		if err := h.handleNotificationRead(conn, msg); err != nil {
			h.log.Error("Failed to mark notification read", "user_id", conn.UserID(), "error", err)
			conn.Send(domain.ErrorEvent("failed to mark notification read"))
		}
	case domain.MessageChat:
		// Chat delivery is not wired up yet; frames are accepted and dropped.
		h.log.Debug("Chat message ignored", "user_id", conn.UserID())
	default:
		h.log.Warn("Unknown message type", "type", msg.Type, "user_id", conn.UserID())
	}
}

func (h *Handler) handleSystem(conn *Conn, msg *domain.InboundMessage) {
	switch msg.Action {
	case domain.ActionPong:
		conn.SetAlive(true)
	default:
		h.log.Debug("Unknown system action", "action", msg.Action, "user_id", conn.UserID())
	}
}

// handleBookingUpdate fans a status change out to everyone the booking
// concerns. The sender hears about it only if the lookup returns them.
func (h *Handler) handleBookingUpdate(conn *Conn, msg *domain.InboundMessage) error {
	var payload struct {
		BookingID string `json:"booking_id"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return fmt.Errorf("decode booking update: %w", err)
	}
	if payload.BookingID == "" {
		return fmt.Errorf("booking update without booking_id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	users, err := h.bookings.GetAffectedUsers(ctx, payload.BookingID)
	if err != nil {
		return fmt.Errorf("resolve affected users: %w", err)
	}

	event := domain.OutboundEvent{
		Type: domain.EventBookingUpdated,
		Data: map[string]string{
			"booking_id": payload.BookingID,
			"status":     payload.Status,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for _, userID := range users {
		if err := h.notifier.SendToUser(userID, event); err != nil {
			h.log.Error("Failed to notify user of booking update",
				"user_id", userID, "booking_id", payload.BookingID, "error", err)
		}
	}
	return nil
}

func (h *Handler) handleNotificationRead(conn *Conn, msg *domain.InboundMessage) error {
	var payload struct {
		NotificationID string `json:"notification_id"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return fmt.Errorf("decode notification read: %w", err)
	}
	if payload.NotificationID == "" {
		return fmt.Errorf("notification read without notification_id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	return h.notifications.MarkRead(ctx, conn.UserID(), payload.NotificationID)
}
