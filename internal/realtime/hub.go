package realtime

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks the websocket sessions of this node and the topics they listen on.
// A user may hold several sessions at once; each one is addressed by its own id.
type Hub struct {
	mu            sync.RWMutex
	sessions      map[string]Conn                // sessionID -> connection
	topics        map[string]map[string]Conn     // topic -> sessionID -> connection
	sessionTopics map[string]map[string]struct{} // sessionID -> set of topics
}

// Conn is what the hub needs from a connection.
type Conn interface {
	SessionID() string
	Send(payload []byte) error
	Close(code int, reason string)
}

func NewHub() *Hub {
	return &Hub{
		sessions:      make(map[string]Conn),
		topics:        make(map[string]map[string]Conn),
		sessionTopics: make(map[string]map[string]struct{}),
	}
}

func (h *Hub) Attach(conn Conn) {
	h.mu.Lock()
	h.sessions[conn.SessionID()] = conn
	if h.sessionTopics[conn.SessionID()] == nil {
		h.sessionTopics[conn.SessionID()] = make(map[string]struct{})
	}
	h.mu.Unlock()
}

// Detach removes a connection and all of its subscriptions if it is still tracked.
func (h *Hub) Detach(conn Conn) {
	h.mu.Lock()
	h.detachLocked(conn.SessionID())
	h.mu.Unlock()
}

// Subscribe adds the connection to topic. Unattached connections are ignored.
func (h *Hub) Subscribe(topic string, conn Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := conn.SessionID()
	if _, ok := h.sessions[id]; !ok {
		return false
	}

	members := h.topics[topic]
	if members == nil {
		members = make(map[string]Conn)
		h.topics[topic] = members
	}
	members[id] = conn
	h.sessionTopics[id][topic] = struct{}{}
	return true
}

func (h *Hub) Unsubscribe(topic string, conn Conn) {
	h.mu.Lock()
	h.leaveLocked(topic, conn.SessionID())
	h.mu.Unlock()
}

// Deliver writes payload to every local subscriber of topic and returns how many accepted it.
// A failing connection does not stop delivery to the rest; a slow consumer is detached
// and closed off the delivery path.
func (h *Hub) Deliver(topic string, payload []byte) int {
	h.mu.RLock()
	members := make([]Conn, 0, len(h.topics[topic]))
	for _, conn := range h.topics[topic] {
		members = append(members, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range members {
		err := conn.Send(payload)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrSlowConsumer):
			h.Detach(conn)
			go conn.Close(websocket.CloseGoingAway, "send buffer full")
		}
	}
	return delivered
}

// Connection returns the tracked connection for sessionID, or nil.
func (h *Hub) Connection(sessionID string) Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[sessionID]
}

func (h *Hub) IsSubscribed(topic, sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.topics[topic][sessionID]
	return ok
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]Conn, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]Conn)
	h.topics = make(map[string]map[string]Conn)
	h.sessionTopics = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(websocket.CloseGoingAway, "server shutdown")
	}
}

func (h *Hub) detachLocked(sessionID string) {
	if _, ok := h.sessions[sessionID]; !ok {
		return
	}
	delete(h.sessions, sessionID)

	for topic := range h.sessionTopics[sessionID] {
		h.leaveLocked(topic, sessionID)
	}
	delete(h.sessionTopics, sessionID)
}

func (h *Hub) leaveLocked(topic, sessionID string) {
	members := h.topics[topic]
	if members == nil {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.topics, topic)
	}
	if subs, ok := h.sessionTopics[sessionID]; ok {
		delete(subs, topic)
	}
}
