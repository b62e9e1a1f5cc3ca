package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"go-jobswipe-backend/pkg/logger"
	"go-jobswipe-backend/pkg/security"
)

const closeLivenessTimeout = 4008

// Sweeper periodically expires sessions that stopped answering, in case the
// read loop never notices the peer went away.
type Sweeper struct {
	cron     *cron.Cron
	spec     string
	maxIdle  time.Duration
	presence *PresenceTracker
	hub      *Hub
	audit    *security.SecurityLogger
}

func NewSweeper(spec string, maxIdle time.Duration, presence *PresenceTracker, hub *Hub, audit *security.SecurityLogger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		spec:     spec,
		maxIdle:  maxIdle,
		presence: presence,
		hub:      hub,
		audit:    audit,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.Sweep); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	logger.Log.Info("Presence sweeper started", "spec", s.spec, "max_idle", s.maxIdle.String())
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep expires idle sessions once and closes their sockets.
func (s *Sweeper) Sweep() {
	expired := s.presence.Sweep(s.maxIdle)
	for _, e := range expired {
		if conn := s.hub.Connection(e.SessionID); conn != nil {
			s.hub.Detach(conn)
			conn.Close(closeLivenessTimeout, "liveness timeout")
		}
		s.audit.LogSessionExpired(context.Background(), e.UserID, e.SessionID, e.Idle)
	}
	if len(expired) > 0 {
		logger.Log.Info("Expired idle realtime sessions", "count", len(expired))
	}
}
