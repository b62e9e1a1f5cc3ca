package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/apperror"
	"go-jobswipe-backend/pkg/logger"
	"go-jobswipe-backend/pkg/security"
	"go-jobswipe-backend/pkg/validation"
)

// roomResolveAttempts bounds GetOrCreate when it keeps losing the insert race
// and then cannot see the winner's row.
const roomResolveAttempts = 3

const messageNotificationTitle = "New Message"

// ChatDependencies groups what the chat usecase needs.
type ChatDependencies struct {
	Rooms     domain.ChatRoomRepository
	Messages  domain.MessageRepository
	Users     domain.UserRepository
	Matches   domain.MatchRepository
	Profiles  map[string]domain.ProfileLookup // keyed by role
	Graph     domain.ConnectionGraph
	Presence  domain.PresenceReader
	Publisher domain.EventPublisher
	Notifier  domain.Notifier
	Validate  *validator.Validate
	Audit     *security.SecurityLogger
	Timeout   time.Duration
}

type chatUsecase struct {
	ChatDependencies
}

type sendMessageInput struct {
	Content string `validate:"required,notblank,maxrunes"`
}

// chatMessageEvent is the room broadcast for a new message. is_own is left to each client.
type chatMessageEvent struct {
	domain.Message
	SenderName string `json:"sender_name,omitempty"`
}

func NewChatUsecase(deps ChatDependencies) domain.ChatUsecase {
	if deps.Validate == nil {
		deps.Validate = validation.New()
	}
	return &chatUsecase{ChatDependencies: deps}
}

// GetOrCreate resolves the single room of an unordered user pair, creating it on first use.
// matchID, when given, is recorded on the room if it has none yet.
func (uc *chatUsecase) GetOrCreate(ctx context.Context, userA, userB string, matchID *int64) (*domain.ChatRoom, error) {
	if userA == "" || userB == "" {
		return nil, apperror.BadRequest("Both participants are required")
	}
	if userA == userB {
		return nil, apperror.New(http.StatusBadRequest, "You cannot chat with yourself", domain.ErrSamePair)
	}

	ctx, cancel := boundedContext(ctx, uc.Timeout)
	defer cancel()

	low, high := domain.NormalizePair(userA, userB)
	for attempt := 1; attempt <= roomResolveAttempts; attempt++ {
		room, created, err := uc.Rooms.InsertIfAbsent(ctx, low, high, matchID)
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		if created {
			return room, nil
		}

		room, err = uc.Rooms.GetByPair(ctx, low, high)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperror.FromStorage(err)
		}

		if matchID != nil && room.MatchID == nil {
			if err := uc.Rooms.AttachMatch(ctx, room.ID, *matchID); err != nil {
				return nil, apperror.FromStorage(err)
			}
			id := *matchID
			room.MatchID = &id
		}
		return room, nil
	}
	return nil, apperror.Internal(fmt.Errorf("chat room for pair did not resolve after %d attempts", roomResolveAttempts))
}

func (uc *chatUsecase) GetOrCreateDirectChat(ctx context.Context, userID, otherUserID string) (*domain.RoomDetail, error) {
	if userID == otherUserID {
		return nil, apperror.New(http.StatusBadRequest, "You cannot chat with yourself", domain.ErrSamePair)
	}

	qctx, cancel := boundedContext(ctx, uc.Timeout)
	_, err := uc.Users.GetByID(qctx, otherUserID)
	cancel()
	if err != nil {
		return nil, storageError(err, "User not found")
	}

	room, err := uc.GetOrCreate(ctx, userID, otherUserID, nil)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, room, userID)
}

func (uc *chatUsecase) GetOrCreateForMatch(ctx context.Context, userID string, matchID int64) (*domain.RoomDetail, error) {
	qctx, cancel := boundedContext(ctx, uc.Timeout)
	m, err := uc.Matches.GetByID(qctx, matchID)
	cancel()
	if err != nil {
		return nil, storageError(err, "Match not found")
	}
	if !m.HasParticipant(userID) {
		return nil, accessDenied("You are not part of this match")
	}

	room, err := uc.GetOrCreate(ctx, m.SeekerUserID, m.CompanyUserID, &m.ID)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, room, userID)
}

// ListRooms returns the caller's rooms, newest first, with last message and unread count.
func (uc *chatUsecase) ListRooms(ctx context.Context, userID string) ([]domain.RoomSummary, error) {
	ctx, cancel := boundedContext(ctx, uc.Timeout)
	defer cancel()

	listings, err := uc.Rooms.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	cache := make(map[string]domain.Participant)
	summaries := make([]domain.RoomSummary, 0, len(listings))
	for _, l := range listings {
		otherID, err := l.Room.OtherParticipant(userID)
		if err != nil {
			continue
		}
		var other domain.Participant
		if l.OtherUser != nil {
			other = *l.OtherUser
		} else {
			other = uc.participantCached(ctx, otherID, cache)
		}
		summaries = append(summaries, domain.RoomSummary{
			ChatRoom:    l.Room,
			OtherUser:   other,
			LastMessage: l.LastMessage,
			UnreadCount: l.UnreadCount,
			Online:      uc.isOnline(otherID),
		})
	}
	return summaries, nil
}

func (uc *chatUsecase) GetRoom(ctx context.Context, roomID int64, userID string) (*domain.RoomDetail, error) {
	room, err := uc.Authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, room, userID)
}

// Authorize loads a room and checks userID is one of its two members.
func (uc *chatUsecase) Authorize(ctx context.Context, roomID int64, userID string) (*domain.ChatRoom, error) {
	ctx, cancel := boundedContext(ctx, uc.Timeout)
	defer cancel()

	room, err := uc.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, storageError(err, "Chat room not found")
	}
	if !room.HasParticipant(userID) {
		uc.Audit.LogNonParticipant(ctx, userID, "chat_room:"+strconv.FormatInt(roomID, 10))
		return nil, notAParticipant()
	}
	return room, nil
}

func (uc *chatUsecase) SendMessage(ctx context.Context, roomID int64, senderID, content string) (*domain.MessageView, error) {
	if err := uc.Validate.Struct(sendMessageInput{Content: content}); err != nil {
		return nil, apperror.BadRequest(validation.Summary(err))
	}
	content = strings.TrimSpace(content)

	room, err := uc.Authorize(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}
	recipient, _ := room.OtherParticipant(senderID)

	qctx, cancel := boundedContext(ctx, uc.Timeout)
	msg := &domain.Message{
		ChatRoomID: room.ID,
		SenderID:   senderID,
		Content:    content,
		Status:     domain.MessageSent,
	}
	err = uc.Messages.Create(qctx, msg)
	cancel()
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	sender := uc.participant(ctx, senderID)
	uc.Publisher.Publish(ctx, domain.RoomTopic(room.ID), domain.Event{
		Type: domain.EventChatMessage,
		Data: chatMessageEvent{Message: *msg, SenderName: sender.Name},
	})
	uc.Notifier.Notify(ctx, recipient, domain.NotificationMessage, messageNotificationTitle,
		sender.Name+": "+domain.Preview(content), &room.ID)

	view := domain.NewMessageView(*msg, senderID, sender.Name)
	return &view, nil
}

// ListMessages returns the room's messages oldest first, each flagged for the requester.
func (uc *chatUsecase) ListMessages(ctx context.Context, roomID int64, userID string) ([]domain.MessageView, error) {
	room, err := uc.Authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	qctx, cancel := boundedContext(ctx, uc.Timeout)
	messages, err := uc.Messages.ListByRoom(qctx, room.ID)
	cancel()
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	cache := make(map[string]domain.Participant)
	views := make([]domain.MessageView, 0, len(messages))
	for _, m := range messages {
		name := uc.participantCached(ctx, m.SenderID, cache).Name
		views = append(views, domain.NewMessageView(m, userID, name))
	}
	return views, nil
}

// MarkRead marks every message the other participant sent as read. A missing room is a no-op.
func (uc *chatUsecase) MarkRead(ctx context.Context, roomID int64, userID string) (int64, error) {
	ctx, cancel := boundedContext(ctx, uc.Timeout)
	defer cancel()

	room, err := uc.Rooms.GetByID(ctx, roomID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperror.FromStorage(err)
	}
	if !room.HasParticipant(userID) {
		uc.Audit.LogNonParticipant(ctx, userID, "chat_room:"+strconv.FormatInt(roomID, 10))
		return 0, accessDenied("You do not have access to this chat")
	}

	changed, err := uc.Messages.MarkRead(ctx, room.ID, userID)
	if err != nil {
		return 0, apperror.FromStorage(err)
	}
	if changed > 0 {
		uc.Publisher.Publish(ctx, domain.RoomTopic(room.ID), domain.Event{
			Type: domain.EventChatRead,
			Data: domain.ReadReceipt{ChatRoomID: room.ID, ReaderID: userID, Count: changed, ReadAt: time.Now().UTC()},
		})
	}
	return changed, nil
}

func (uc *chatUsecase) CountUnread(ctx context.Context, roomID int64, userID string) (int64, error) {
	room, err := uc.Authorize(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := boundedContext(ctx, uc.Timeout)
	defer cancel()
	n, err := uc.Messages.CountUnread(ctx, room.ID, userID)
	if err != nil {
		return 0, apperror.FromStorage(err)
	}
	return n, nil
}

func (uc *chatUsecase) UnreadTotal(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := boundedContext(ctx, uc.Timeout)
	defer cancel()

	n, err := uc.Messages.CountUnreadTotal(ctx, userID)
	if err != nil {
		return 0, apperror.FromStorage(err)
	}
	return n, nil
}

func (uc *chatUsecase) detail(ctx context.Context, room *domain.ChatRoom, userID string) (*domain.RoomDetail, error) {
	otherID, err := room.OtherParticipant(userID)
	if err != nil {
		return nil, notAParticipant()
	}

	d := &domain.RoomDetail{
		ChatRoom:  *room,
		OtherUser: uc.participant(ctx, otherID),
		Online:    uc.isOnline(otherID),
	}

	if uc.Graph != nil {
		qctx, cancel := boundedContext(ctx, uc.Timeout)
		connected, err := uc.Graph.IsConnected(qctx, userID, otherID)
		cancel()
		if err != nil {
			logger.Log.Warn("Connection lookup failed", "room_id", room.ID, "error", err)
		}
		d.Connected = connected
	}
	return d, nil
}

// participant resolves a display card through the lookup registered for the user's role.
// Lookup failures degrade to a bare card.
func (uc *chatUsecase) participant(ctx context.Context, userID string) domain.Participant {
	ctx, cancel := boundedContext(ctx, uc.Timeout)
	defer cancel()

	card := domain.Participant{UserID: userID}
	user, err := uc.Users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Log.Warn("User lookup failed", "user_id", userID, "error", err)
		}
		return card
	}
	card.Name = user.Name
	card.Role = user.Role

	lookup, ok := uc.Profiles[user.Role]
	if !ok {
		return card
	}
	p, err := lookup.Lookup(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Log.Warn("Profile lookup failed", "user_id", userID, "role", user.Role, "error", err)
		}
		return card
	}
	if p.Name == "" {
		p.Name = card.Name
	}
	p.UserID, p.Role = userID, user.Role
	return *p
}

func (uc *chatUsecase) isOnline(userID string) bool {
	return uc.Presence != nil && uc.Presence.IsOnline(userID)
}

func (uc *chatUsecase) participantCached(ctx context.Context, userID string, cache map[string]domain.Participant) domain.Participant {
	if p, ok := cache[userID]; ok {
		return p
	}
	p := uc.participant(ctx, userID)
	cache[userID] = p
	return p
}
