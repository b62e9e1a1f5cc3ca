package domain

import (
	"context"
	"time"
	"unicode/utf8"
)

type MessageStatus string

const (
	MessageSent MessageStatus = "SENT"
	MessageRead MessageStatus = "READ"
)

// previewRunes is how much of a message a notification quotes.
const previewRunes = 50

// ChatRoom joins exactly two users. UserLow < UserHigh always holds.
type ChatRoom struct {
	ID        int64     `json:"id"`
	UserLow   string    `json:"user_low"`
	UserHigh  string    `json:"user_high"`
	MatchID   *int64    `json:"match_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizePair orders two user ids so that the same unordered pair always
// maps to the same (low, high) key.
func NormalizePair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

func (r *ChatRoom) HasParticipant(userID string) bool {
	return userID != "" && (r.UserLow == userID || r.UserHigh == userID)
}

// OtherParticipant returns the member of the room that is not userID.
func (r *ChatRoom) OtherParticipant(userID string) (string, error) {
	switch userID {
	case r.UserLow:
		return r.UserHigh, nil
	case r.UserHigh:
		return r.UserLow, nil
	}
	return "", ErrNotAParticipant
}

type Message struct {
	ID         int64         `json:"id"`
	ChatRoomID int64         `json:"chat_room_id"`
	SenderID   string        `json:"sender_id"`
	Content    string        `json:"content"`
	Status     MessageStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// MessageView is a message as seen by one requester.
type MessageView struct {
	Message
	SenderName string `json:"sender_name,omitempty"`
	IsOwn      bool   `json:"is_own"`
}

// IsOwnMessage depends only on who sent the message and who is asking.
func IsOwnMessage(senderID, requesterID string) bool {
	return senderID != "" && senderID == requesterID
}

func NewMessageView(m Message, requesterID, senderName string) MessageView {
	return MessageView{Message: m, SenderName: senderName, IsOwn: IsOwnMessage(m.SenderID, requesterID)}
}

// Preview quotes the first 50 characters of content, adding "..." when cut.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewRunes]) + "..."
}

// RoomSummary is one line of a user's chat list.
type RoomSummary struct {
	ChatRoom
	OtherUser   Participant `json:"other_user"`
	LastMessage *Message    `json:"last_message,omitempty"`
	UnreadCount int64       `json:"unread_count"`
	Online      bool        `json:"online"`
}

// RoomDetail is a single room annotated for the requester.
type RoomDetail struct {
	ChatRoom
	OtherUser Participant `json:"other_user"`
	Connected bool        `json:"connected"`
	Online    bool        `json:"online"`
}

// RoomListing is the storage view used by ListRooms before participant lookup.
type RoomListing struct {
	Room        ChatRoom
	LastMessage *Message
	UnreadCount int64
	// OtherUser is set when storage resolved the counterpart in the same query.
	OtherUser *Participant
}

// ReadReceipt is broadcast to a room after messages were marked read.
type ReadReceipt struct {
	ChatRoomID int64     `json:"chat_room_id"`
	ReaderID   string    `json:"reader_id"`
	Count      int64     `json:"count"`
	ReadAt     time.Time `json:"read_at"`
}

type ChatRoomRepository interface {
	// InsertIfAbsent creates the room for a normalized pair. created is false when
	// another writer got there first; the caller should then read it back.
	InsertIfAbsent(ctx context.Context, low, high string, matchID *int64) (room *ChatRoom, created bool, err error)
	GetByPair(ctx context.Context, low, high string) (*ChatRoom, error)
	GetByID(ctx context.Context, id int64) (*ChatRoom, error)
	// AttachMatch sets match_id only when it is still empty.
	AttachMatch(ctx context.Context, roomID, matchID int64) error
	ListForUser(ctx context.Context, userID string) ([]RoomListing, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	ListByRoom(ctx context.Context, roomID int64) ([]Message, error)
	// MarkRead flips every unread message in the room not sent by userID. Returns rows changed.
	MarkRead(ctx context.Context, roomID int64, userID string) (int64, error)
	CountUnread(ctx context.Context, roomID int64, userID string) (int64, error)
	CountUnreadTotal(ctx context.Context, userID string) (int64, error)
}

// ConnectionGraph answers whether two users are connected. Annotation only.
type ConnectionGraph interface {
	IsConnected(ctx context.Context, a, b string) (bool, error)
}

// RoomResolver is the slice of chat used by the match engine.
type RoomResolver interface {
	GetOrCreate(ctx context.Context, userA, userB string, matchID *int64) (*ChatRoom, error)
}

type ChatUsecase interface {
	RoomResolver
	GetOrCreateDirectChat(ctx context.Context, userID, otherUserID string) (*RoomDetail, error)
	GetOrCreateForMatch(ctx context.Context, userID string, matchID int64) (*RoomDetail, error)
	ListRooms(ctx context.Context, userID string) ([]RoomSummary, error)
	GetRoom(ctx context.Context, roomID int64, userID string) (*RoomDetail, error)
	// Authorize checks that userID may use the room.
	Authorize(ctx context.Context, roomID int64, userID string) (*ChatRoom, error)

	SendMessage(ctx context.Context, roomID int64, senderID, content string) (*MessageView, error)
	ListMessages(ctx context.Context, roomID int64, userID string) ([]MessageView, error)
	MarkRead(ctx context.Context, roomID int64, userID string) (int64, error)
	CountUnread(ctx context.Context, roomID int64, userID string) (int64, error)
	UnreadTotal(ctx context.Context, userID string) (int64, error)
}
