package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobswipe-backend/internal/domain"
)

type fakeConn struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeConn) SessionID() string { return f.id }

func (f *fakeConn) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, payload)
	return nil
}

func (f *fakeConn) Close(int, string) {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConn) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func TestHub_DeliverOnlyToSubscribers(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b"}
	hub.Attach(a)
	hub.Attach(b)

	require.True(t, hub.Subscribe("room.1", a))
	assert.Equal(t, 1, hub.Deliver("room.1", []byte("hi")))
	assert.Len(t, a.received(), 1)
	assert.Empty(t, b.received())
}

func TestHub_SubscribeRequiresAttach(t *testing.T) {
	hub := NewHub()
	stray := &fakeConn{id: "stray"}
	assert.False(t, hub.Subscribe("room.1", stray))
	assert.Equal(t, 0, hub.Deliver("room.1", []byte("x")))
}

func TestHub_FailingConnectionDoesNotBlockOthers(t *testing.T) {
	hub := NewHub()
	bad := &fakeConn{id: "bad", fail: true}
	good := &fakeConn{id: "good"}
	for _, c := range []*fakeConn{bad, good} {
		hub.Attach(c)
		hub.Subscribe("presence", c)
	}

	assert.Equal(t, 1, hub.Deliver("presence", []byte("x")))
	assert.Len(t, good.received(), 1)
}

func TestHub_DetachDropsSubscriptions(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{id: "a"}
	hub.Attach(a)
	hub.Subscribe("room.1", a)
	hub.Subscribe("user.u1", a)

	hub.Detach(a)
	assert.False(t, hub.IsSubscribed("room.1", "a"))
	assert.Nil(t, hub.Connection("a"))
	assert.Equal(t, 0, hub.Deliver("user.u1", []byte("x")))

	// second detach is harmless
	hub.Detach(a)
}

func TestHub_CloseClosesEverything(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{id: "a"}
	hub.Attach(a)
	hub.Close()
	assert.True(t, a.closed)
	assert.Equal(t, 0, hub.SessionCount())
}

func TestEventBus_PreservesPublishOrder(t *testing.T) {
	hub := NewHub()
	sub := &fakeConn{id: "s"}
	hub.Attach(sub)
	hub.Subscribe(domain.TopicPresence, sub)

	bus := NewEventBus(NewLocalBroker(hub))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	presence := NewPresenceTracker(func(c domain.PresenceChange) {
		bus.Publish(ctx, domain.TopicPresence, domain.NewPresenceEvent(c))
	})
	for i := 0; i < 20; i++ {
		presence.OnConnect("s1", "u1")
		presence.OnDisconnect("s1")
	}

	require.Eventually(t, func() bool { return len(sub.received()) == 40 }, 2*time.Second, 10*time.Millisecond)

	for i, raw := range sub.received() {
		var ev domain.PresenceEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, "presence", ev.Type)
		assert.Equal(t, "u1", ev.UserID)
		assert.Equal(t, i%2 == 0, ev.Online, "event %d out of order", i)
	}
}

func TestSweeper_ClosesExpiredConnections(t *testing.T) {
	hub := NewHub()
	presence := NewPresenceTracker(nil)
	clock := time.Now()
	presence.now = func() time.Time { return clock }

	conn := &fakeConn{id: "s1"}
	hub.Attach(conn)
	presence.OnConnect("s1", "u1")

	clock = clock.Add(2 * time.Minute)
	NewSweeper("@every 30s", 90*time.Second, presence, hub, nil).Sweep()

	assert.True(t, conn.closed)
	assert.False(t, presence.IsOnline("u1"))
	assert.Nil(t, hub.Connection("s1"))
}

// stalledConn reports a full buffer and then hangs in Close, like a peer stuck at the TCP level.
type stalledConn struct {
	id      string
	release chan struct{}
	closed  chan struct{}
}

func (s *stalledConn) SessionID() string { return s.id }
func (s *stalledConn) Send([]byte) error { return ErrSlowConsumer }

func (s *stalledConn) Close(int, string) {
	<-s.release
	close(s.closed)
}

func TestHub_SlowConsumerDoesNotStallDelivery(t *testing.T) {
	hub := NewHub()
	slow := &stalledConn{id: "slow", release: make(chan struct{}), closed: make(chan struct{})}
	good := &fakeConn{id: "good"}
	hub.Attach(slow)
	hub.Attach(good)
	hub.Subscribe("room.1", slow)
	hub.Subscribe("room.1", good)

	start := time.Now()
	for i := 0; i < 3; i++ {
		hub.Deliver("room.1", []byte("hi"))
	}
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.Len(t, good.received(), 3)
	assert.False(t, hub.IsSubscribed("room.1", "slow"))
	assert.Nil(t, hub.Connection("slow"))

	close(slow.release)
	select {
	case <-slow.closed:
	case <-time.After(time.Second):
		t.Fatal("slow consumer was never closed")
	}
}
