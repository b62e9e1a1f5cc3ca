package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/apperror"
	"go-jobswipe-backend/pkg/logger"
	"go-jobswipe-backend/pkg/security"
)

// Inbound frame types
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FrameChatSend    = "chat.send"
	FrameChatRead    = "chat.read"
	FramePing        = "ping"
)

// ChatService is the part of chat the realtime channel drives.
type ChatService interface {
	Authorize(ctx context.Context, roomID int64, userID string) (*domain.ChatRoom, error)
	SendMessage(ctx context.Context, roomID int64, senderID, content string) (*domain.MessageView, error)
	MarkRead(ctx context.Context, roomID int64, userID string) (int64, error)
}

type inboundFrame struct {
	Type    string `json:"type"`
	RoomID  int64  `json:"room_id"`
	Content string `json:"content"`
	Ref     string `json:"ref,omitempty"`
}

type errorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Frame   string `json:"frame,omitempty"`
	Ref     string `json:"ref,omitempty"`
}

type ackPayload struct {
	Frame  string `json:"frame"`
	RoomID int64  `json:"room_id"`
	Ref    string `json:"ref,omitempty"`
}

type connectedPayload struct {
	SessionID   string   `json:"session_id"`
	UserID      string   `json:"user_id"`
	OnlineUsers []string `json:"online_users"`
}

type GatewayOptions struct {
	PingInterval    time.Duration
	LivenessTimeout time.Duration
}

// Gateway owns the lifetime of every websocket session on this node.
type Gateway struct {
	hub      *Hub
	presence *PresenceTracker
	chat     ChatService
	audit    *security.SecurityLogger
	opts     GatewayOptions
}

func NewGateway(hub *Hub, presence *PresenceTracker, chat ChatService, audit *security.SecurityLogger, opts GatewayOptions) *Gateway {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.LivenessTimeout <= opts.PingInterval {
		opts.LivenessTimeout = 3 * opts.PingInterval
	}
	return &Gateway{hub: hub, presence: presence, chat: chat, audit: audit, opts: opts}
}

// Serve runs an authenticated session until the peer leaves. userID was verified at upgrade.
func (g *Gateway) Serve(ws *websocket.Conn, userID string) {
	conn := NewConnection(userID, ws, g.opts.PingInterval, g.opts.LivenessTimeout)
	ctx, cancel := context.WithCancel(context.Background())

	g.hub.Attach(conn)
	g.hub.Subscribe(domain.TopicPresence, conn)
	g.hub.Subscribe(domain.UserTopic(userID), conn)
	conn.Start()

	// connected goes out first so it precedes any presence edge this session causes.
	g.reply(conn, domain.Event{Type: domain.EventConnected, Data: connectedPayload{
		SessionID:   conn.ID,
		UserID:      userID,
		OnlineUsers: g.presence.OnlineUsers(),
	}})
	g.presence.OnConnect(conn.ID, userID)

	var once sync.Once
	disconnect := func() {
		once.Do(func() {
			cancel()
			g.hub.Detach(conn)
			g.presence.OnDisconnect(conn.ID)
			conn.Close(websocket.CloseNormalClosure, "")
		})
	}
	defer disconnect()

	err := conn.ReadLoop(
		func(payload []byte) { g.dispatch(ctx, conn, payload) },
		func() { g.presence.Touch(conn.ID) },
	)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Log.Debug("Realtime session ended", "session_id", conn.ID, "user_id", userID, "error", err)
	}
}

func (g *Gateway) dispatch(ctx context.Context, conn *Connection, payload []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		g.replyError(conn, frame, apperror.BadRequest("Malformed frame"))
		return
	}

	switch frame.Type {
	case FrameSubscribe:
		if _, err := g.chat.Authorize(ctx, frame.RoomID, conn.UserID); err != nil {
			g.replyError(conn, frame, err)
			return
		}
		g.hub.Subscribe(domain.RoomTopic(frame.RoomID), conn)
		g.ack(conn, frame)

	case FrameUnsubscribe:
		g.hub.Unsubscribe(domain.RoomTopic(frame.RoomID), conn)
		g.ack(conn, frame)

	case FrameChatSend:
		// The message reaches the sender through the room topic like everyone else.
		if _, err := g.chat.SendMessage(ctx, frame.RoomID, conn.UserID, frame.Content); err != nil {
			g.replyError(conn, frame, err)
		}

	case FrameChatRead:
		if _, err := g.chat.MarkRead(ctx, frame.RoomID, conn.UserID); err != nil {
			g.replyError(conn, frame, err)
		}

	case FramePing:
		// activity already recorded by the read loop

	default:
		g.replyError(conn, frame, apperror.BadRequest("Unknown frame type"))
	}
}

func (g *Gateway) ack(conn *Connection, frame inboundFrame) {
	g.reply(conn, domain.Event{Type: frame.Type, Data: ackPayload{Frame: frame.Type, RoomID: frame.RoomID, Ref: frame.Ref}})
}

func (g *Gateway) replyError(conn *Connection, frame inboundFrame, err error) {
	p := errorPayload{Code: 500, Message: "Internal Server Error", Frame: frame.Type, Ref: frame.Ref}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		p.Code = appErr.Code
		p.Message = appErr.Message
	}
	if p.Code >= 500 {
		logger.Log.Error("Realtime frame failed", "session_id", conn.ID, "frame", frame.Type, "error", err)
	}
	if errors.Is(err, domain.ErrNotAParticipant) || errors.Is(err, domain.ErrAccessDenied) {
		g.audit.LogNonParticipant(context.Background(), conn.UserID, domain.RoomTopic(frame.RoomID))
	}
	g.reply(conn, domain.Event{Type: domain.EventError, Data: p})
}

func (g *Gateway) reply(conn *Connection, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Failed to encode realtime reply", "type", event.Type, "error", err)
		return
	}
	if err := conn.Send(payload); err != nil {
		logger.Log.Debug("Realtime reply dropped", "session_id", conn.ID, "error", err)
	}
}
