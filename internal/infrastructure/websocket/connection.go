package websocket

import (
	"sync"
	"time"

	"travel-system/internal/domain"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Conn wraps a single client socket bound to one verified user. The
// transport handle is owned exclusively by this value; every write goes
// through Send, which serializes access because gorilla permits only one
// concurrent writer per connection.
type Conn struct {
	conn   *websocket.Conn
	userID string

	writeMu sync.Mutex

	aliveMu sync.Mutex
	alive   bool

	closeOnce sync.Once
	closeErr  error
}

func NewConn(conn *websocket.Conn, userID string) *Conn {
	return &Conn{
		conn:   conn,
		userID: userID,
		alive:  true,
	}
}

func (c *Conn) Send(event domain.OutboundEvent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(event)
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *Conn) UserID() string {
	return c.userID
}

func (c *Conn) Alive() bool {
	c.aliveMu.Lock()
	defer c.aliveMu.Unlock()
	return c.alive
}

func (c *Conn) SetAlive(alive bool) {
	c.aliveMu.Lock()
	c.alive = alive
	c.aliveMu.Unlock()
}
