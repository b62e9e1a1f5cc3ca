package realtime

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobswipe-backend/internal/domain"
)

type changeRecorder struct {
	mu      sync.Mutex
	changes []domain.PresenceChange
}

func (r *changeRecorder) record(c domain.PresenceChange) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *changeRecorder) all() []domain.PresenceChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PresenceChange(nil), r.changes...)
}

func TestPresence_EdgesOnlyOnFirstAndLastSession(t *testing.T) {
	rec := &changeRecorder{}
	p := NewPresenceTracker(rec.record)

	p.OnConnect("s1", "u1")
	p.OnConnect("s2", "u1")
	p.OnConnect("s3", "u1")
	assert.True(t, p.IsOnline("u1"))
	assert.Equal(t, 3, p.SessionCount("u1"))

	p.OnDisconnect("s1")
	p.OnDisconnect("s2")
	assert.True(t, p.IsOnline("u1"))

	p.OnDisconnect("s3")
	assert.False(t, p.IsOnline("u1"))

	assert.Equal(t, []domain.PresenceChange{
		{UserID: "u1", Online: true},
		{UserID: "u1", Online: false},
	}, rec.all())
}

func TestPresence_DisconnectUnknownSessionIsNoop(t *testing.T) {
	rec := &changeRecorder{}
	p := NewPresenceTracker(rec.record)

	assert.False(t, p.OnDisconnect("ghost"))

	p.OnConnect("s1", "u1")
	assert.True(t, p.OnDisconnect("s1"))
	assert.False(t, p.OnDisconnect("s1"))

	assert.Len(t, rec.all(), 2)
}

func TestPresence_ReconnectSameSessionDoesNotDoubleCount(t *testing.T) {
	p := NewPresenceTracker(nil)
	p.OnConnect("s1", "u1")
	p.OnConnect("s1", "u1")
	assert.Equal(t, 1, p.SessionCount("u1"))
}

func TestPresence_OnlineUsersSorted(t *testing.T) {
	p := NewPresenceTracker(nil)
	p.OnConnect("s1", "u3")
	p.OnConnect("s2", "u1")
	p.OnConnect("s3", "u2")
	p.OnConnect("s4", "u1")

	assert.Equal(t, []string{"u1", "u2", "u3"}, p.OnlineUsers())
}

func TestPresence_SweepExpiresIdleSessions(t *testing.T) {
	rec := &changeRecorder{}
	p := NewPresenceTracker(rec.record)

	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	p.OnConnect("stale", "u1")
	p.OnConnect("fresh", "u2")

	clock = clock.Add(60 * time.Second)
	p.Touch("fresh")

	clock = clock.Add(45 * time.Second)
	expired := p.Sweep(90 * time.Second)

	require.Len(t, expired, 1)
	assert.Equal(t, "stale", expired[0].SessionID)
	assert.Equal(t, "u1", expired[0].UserID)
	assert.Equal(t, 105*time.Second, expired[0].Idle)

	assert.False(t, p.IsOnline("u1"))
	assert.True(t, p.IsOnline("u2"))

	// The read loop exiting later must not produce a second offline edge.
	assert.False(t, p.OnDisconnect("stale"))

	offline := 0
	for _, c := range rec.all() {
		if c.UserID == "u1" && !c.Online {
			offline++
		}
	}
	assert.Equal(t, 1, offline)
}

func TestPresence_ConcurrentSessionsProduceSingleEdgePair(t *testing.T) {
	rec := &changeRecorder{}
	p := NewPresenceTracker(rec.record)

	const sessions = 50
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.OnConnect(fmt.Sprintf("s%d", i), "u1")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, sessions, p.SessionCount("u1"))

	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			p.OnDisconnect(id)
			p.OnDisconnect(id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []domain.PresenceChange{
		{UserID: "u1", Online: true},
		{UserID: "u1", Online: false},
	}, rec.all())
}
