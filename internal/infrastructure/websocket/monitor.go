package websocket

import (
	"fmt"
	"time"

	"travel-system/internal/domain"
	"travel-system/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Monitor is the liveness sweep and the only mechanism that involuntarily
// tears a connection down. It runs on a fixed period driven by cron.
type Monitor struct {
	registry domain.ConnectionRegistry
	cron     *cron.Cron
	interval time.Duration
	log      logger.Logger
}

func NewMonitor(registry domain.ConnectionRegistry, interval time.Duration,
	log logger.Logger) *Monitor {
	return &Monitor{
		registry: registry,
		cron:     cron.New(cron.WithSeconds()),
		interval: interval,
		log:      log,
	}
}

func (m *Monitor) Start() error {
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.interval), m.Sweep); err != nil {
		return err
	}
	m.cron.Start()
	m.log.Info("Liveness monitor started", "interval", m.interval)
	return nil
}

func (m *Monitor) Stop() {
	m.cron.Stop()
	m.log.Info("Liveness monitor stopped")
}

// Sweep checks every registered connection once. A connection that has not
// ponged since the previous sweep is closed and unregistered; the rest get
// their flag cleared and a fresh ping. The eviction check runs before the
// reset, so a connection always has one full interval to answer and is
// dropped only after missing two consecutive pings. That two-sweep window
// is the intended idle-timeout semantics, not an off-by-one.
func (m *Monitor) Sweep() {
	m.registry.ForEach(func(conn domain.Connection) {
		if !conn.Alive() {
			m.log.Info("Evicting unresponsive connection", "user_id", conn.UserID())
			m.registry.Unregister(conn)
			if err := conn.Close(); err != nil {
				m.log.Debug("Failed to close evicted connection",
					"user_id", conn.UserID(), "error", err)
			}
			return
		}

		conn.SetAlive(false)
		if err := conn.Send(domain.SystemEvent(domain.ActionPing)); err != nil {
			m.log.Debug("Failed to ping connection", "user_id", conn.UserID(), "error", err)
		}
	})
}
