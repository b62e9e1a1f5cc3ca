package realtime

import (
	"sort"
	"sync"
	"time"

	"go-jobswipe-backend/internal/domain"
)

type presenceSession struct {
	userID   string
	lastSeen time.Time
}

// ExpiredSession is a session dropped by Sweep.
type ExpiredSession struct {
	SessionID string
	UserID    string
	Idle      time.Duration
}

// PresenceTracker counts live sessions per user. A user is online while at
// least one session is registered. onChange fires only on the 0->1 and 1->0
// edges and is called with the lock held, so edges reach it in order.
// onChange must not call back into the tracker.
type PresenceTracker struct {
	mu       sync.Mutex
	sessions map[string]presenceSession
	byUser   map[string]map[string]struct{}
	onChange func(domain.PresenceChange)
	now      func() time.Time
}

func NewPresenceTracker(onChange func(domain.PresenceChange)) *PresenceTracker {
	if onChange == nil {
		onChange = func(domain.PresenceChange) {}
	}
	return &PresenceTracker{
		sessions: make(map[string]presenceSession),
		byUser:   make(map[string]map[string]struct{}),
		onChange: onChange,
		now:      time.Now,
	}
}

// OnConnect registers a session. Re-registering a known session only refreshes it.
func (p *PresenceTracker) OnConnect(sessionID, userID string) {
	if sessionID == "" || userID == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.sessions[sessionID]; ok {
		if existing.userID == userID {
			existing.lastSeen = p.now()
			p.sessions[sessionID] = existing
			return
		}
		p.removeLocked(sessionID)
	}

	before := len(p.byUser[userID])
	p.sessions[sessionID] = presenceSession{userID: userID, lastSeen: p.now()}
	set := p.byUser[userID]
	if set == nil {
		set = make(map[string]struct{})
		p.byUser[userID] = set
	}
	set[sessionID] = struct{}{}

	if before == 0 && len(set) == 1 {
		p.onChange(domain.PresenceChange{UserID: userID, Online: true})
	}
}

// OnDisconnect removes a session. Unknown sessions are ignored, so the read
// loop and the liveness sweep may both report the same session.
func (p *PresenceTracker) OnDisconnect(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeLocked(sessionID)
}

// Touch records activity on a session.
func (p *PresenceTracker) Touch(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[sessionID]; ok {
		s.lastSeen = p.now()
		p.sessions[sessionID] = s
	}
}

// Sweep drops every session idle for longer than maxIdle.
func (p *PresenceTracker) Sweep(maxIdle time.Duration) []ExpiredSession {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var expired []ExpiredSession
	for id, s := range p.sessions {
		if idle := now.Sub(s.lastSeen); idle > maxIdle {
			expired = append(expired, ExpiredSession{SessionID: id, UserID: s.userID, Idle: idle})
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].SessionID < expired[j].SessionID })
	for _, e := range expired {
		p.removeLocked(e.SessionID)
	}
	return expired
}

func (p *PresenceTracker) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byUser[userID]) > 0
}

// OnlineUsers returns the online user ids in ascending order.
func (p *PresenceTracker) OnlineUsers() []string {
	p.mu.Lock()
	users := make([]string, 0, len(p.byUser))
	for userID := range p.byUser {
		users = append(users, userID)
	}
	p.mu.Unlock()

	sort.Strings(users)
	return users
}

func (p *PresenceTracker) SessionCount(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byUser[userID])
}

func (p *PresenceTracker) removeLocked(sessionID string) bool {
	s, ok := p.sessions[sessionID]
	if !ok {
		return false
	}
	delete(p.sessions, sessionID)

	set := p.byUser[s.userID]
	before := len(set)
	delete(set, sessionID)
	if len(set) == 0 {
		delete(p.byUser, s.userID)
	}

	if before == 1 && len(set) == 0 {
		p.onChange(domain.PresenceChange{UserID: s.userID, Online: false})
	}
	return true
}
