package websocket

import (
	"sync"

	"travel-system/internal/domain"
	"travel-system/pkg/logger"
)

// Registry is the single source of truth for which users are currently
// reachable. At most one live connection per user: registering a second
// connection for the same user replaces the first.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]domain.Connection // userID -> connection
	log         logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		connections: make(map[string]domain.Connection),
		log:         log,
	}
}

func (r *Registry) Register(conn domain.Connection) {
	userID := conn.UserID()

	r.mu.Lock()
	existing, replaced := r.connections[userID]
	r.connections[userID] = conn
	r.mu.Unlock()

	if replaced && existing != conn {
		// Close the old transport outside the lock. Its session loop will
		// observe the read error and call Unregister, which the
		// same-instance check there turns into a no-op.
		go func() {
			if err := existing.Close(); err != nil {
				r.log.Debug("Failed to close replaced connection", "user_id", userID, "error", err)
			}
		}()
	}

	r.log.Info("Connection registered", "user_id", userID, "total", r.Len())
}

// Unregister removes the connection if it is still the registered one for
// its user. Idempotent; a replaced connection's dying session loop must not
// evict its replacement.
func (r *Registry) Unregister(conn domain.Connection) {
	if conn == nil {
		return
	}
	userID := conn.UserID()

	r.mu.Lock()
	registered, exists := r.connections[userID]
	if !exists || registered != conn {
		r.mu.Unlock()
		return
	}
	delete(r.connections, userID)
	r.mu.Unlock()

	r.log.Info("Connection unregistered", "user_id", userID)
}

func (r *Registry) Get(userID string) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.connections[userID]
	return conn, exists
}

// ForEach calls fn for every connection in a snapshot taken under the read
// lock, so fn may write to sockets or mutate the registry without holding
// the lock.
func (r *Registry) ForEach(fn func(conn domain.Connection)) {
	r.mu.RLock()
	snapshot := make([]domain.Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	for _, conn := range snapshot {
		fn(conn)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
