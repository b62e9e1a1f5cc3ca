package domain

import (
	"context"
	"strconv"
)

// Realtime event types
const (
	EventConnected   = "connected"
	EventChatMessage = "chat.message"
	EventChatRead    = "chat.read"
	EventPresence    = "presence"
	EventNotify      = "notification"
	EventError       = "error"
)

const TopicPresence = "presence"

func RoomTopic(roomID int64) string {
	return "room." + strconv.FormatInt(roomID, 10)
}

func UserTopic(userID string) string {
	return "user." + userID
}

// Event is the envelope every realtime frame is sent in.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// PresenceChange is an online/offline edge for one user.
type PresenceChange struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// PresenceEvent is the flat wire form of a presence broadcast.
type PresenceEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

func NewPresenceEvent(c PresenceChange) PresenceEvent {
	return PresenceEvent{Type: EventPresence, UserID: c.UserID, Online: c.Online}
}

// EventPublisher fans an event out to every subscriber of topic. Best effort.
// event is encoded as JSON as-is; most callers pass an Event.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any)
}

// PresenceReader answers presence queries for usecases and handlers.
type PresenceReader interface {
	IsOnline(userID string) bool
	OnlineUsers() []string
}
