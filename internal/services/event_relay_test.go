package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"travel-system/internal/domain"
	"travel-system/pkg/logger"
)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []domain.BookingEventKind
	err   error
}

func (r *recordingNotifier) NotifyBookingEvent(ctx context.Context, kind domain.BookingEventKind,
	booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.kinds = append(r.kinds, kind)
	return nil
}

type recordingNotificationRepo struct {
	mu      sync.Mutex
	created []*domain.Notification
	err     error
}

func (r *recordingNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, n)
	return nil
}

func (r *recordingNotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	return nil
}

func TestHandleBookingEventDeliversAndPersists(t *testing.T) {
	notifier := &recordingNotifier{}
	repo := &recordingNotificationRepo{}
	relay := NewEventRelay(notifier, repo, logger.NewNop())

	event := &domain.BookingEvent{
		Kind:      domain.BookingCreated,
		Booking:   &domain.Booking{ID: "b1", UserID: "u1"},
		Timestamp: time.Now(),
	}
	if err := relay.HandleBookingEvent(event); err != nil {
		t.Fatalf("HandleBookingEvent: %v", err)
	}

	if len(notifier.kinds) != 1 || notifier.kinds[0] != domain.BookingCreated {
		t.Errorf("notifier calls = %v, want one created", notifier.kinds)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(repo.created))
	}
	n := repo.created[0]
	if n.UserID != "u1" || n.Type != domain.EventBookingCreated {
		t.Errorf("notification = %+v, want user u1 type booking-created", n)
	}
	if n.ID == "" {
		t.Error("notification missing generated ID")
	}
}

func TestHandleBookingEventRejectsMissingPayload(t *testing.T) {
	notifier := &recordingNotifier{}
	relay := NewEventRelay(notifier, &recordingNotificationRepo{}, logger.NewNop())

	if err := relay.HandleBookingEvent(&domain.BookingEvent{Kind: domain.BookingCreated}); err == nil {
		t.Error("expected error for event without booking payload")
	}
	if len(notifier.kinds) != 0 {
		t.Error("ownerless event reached the notifier")
	}
}

func TestHandleBookingEventDropsMissingOwner(t *testing.T) {
	notifier := &recordingNotifier{}
	relay := NewEventRelay(notifier, &recordingNotificationRepo{}, logger.NewNop())

	event := &domain.BookingEvent{
		Kind:    domain.BookingUpdated,
		Booking: &domain.Booking{ID: "b1"},
	}
	if err := relay.HandleBookingEvent(event); err != nil {
		t.Fatalf("HandleBookingEvent: %v", err)
	}
	if len(notifier.kinds) != 0 {
		t.Error("ownerless event reached the notifier")
	}
}

func TestHandleBookingEventPersistFailureStillDelivers(t *testing.T) {
	notifier := &recordingNotifier{}
	repo := &recordingNotificationRepo{err: errors.New("mysql down")}
	relay := NewEventRelay(notifier, repo, logger.NewNop())

	event := &domain.BookingEvent{
		Kind:    domain.BookingCancelled,
		Booking: &domain.Booking{ID: "b1", UserID: "u1"},
	}
	if err := relay.HandleBookingEvent(event); err != nil {
		t.Fatalf("HandleBookingEvent: %v", err)
	}
	if len(notifier.kinds) != 1 {
		t.Error("persist failure blocked live delivery")
	}
}
