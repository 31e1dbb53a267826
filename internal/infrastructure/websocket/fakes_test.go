package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"travel-system/internal/domain"
)

// fakeConn implements domain.Connection without a network socket.
type fakeConn struct {
	userID string

	mu      sync.Mutex
	alive   bool
	closed  bool
	sent    []domain.OutboundEvent
	sendErr error
}

func newFakeConn(userID string) *fakeConn {
	return &fakeConn{userID: userID, alive: true}
}

func (c *fakeConn) Send(event domain.OutboundEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, event)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) UserID() string { return c.userID }

func (c *fakeConn) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

func (c *fakeConn) SetAlive(alive bool) {
	c.mu.Lock()
	c.alive = alive
	c.mu.Unlock()
}

func (c *fakeConn) events() []domain.OutboundEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.OutboundEvent, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeVerifier struct {
	users map[string]string // token -> userID
	err   error
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if userID, ok := f.users[token]; ok {
		return userID, nil
	}
	return "", domain.ErrInvalidToken
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	affected map[string][]string // bookingID -> userIDs
	err      error
}

func (f *fakeBookingRepo) GetAffectedUsers(ctx context.Context, bookingID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.affected[bookingID], nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*domain.Notification
	read    [][2]string // userID, notificationID
	err     error
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.read = append(f.read, [2]string{userID, notificationID})
	return nil
}

func (f *fakeNotificationRepo) readCalls() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]string, len(f.read))
	copy(out, f.read)
	return out
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}
