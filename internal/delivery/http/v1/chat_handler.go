package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-jobswipe-backend/internal/delivery/http/response"
	"go-jobswipe-backend/internal/domain"
)

type ChatHandler struct {
	chatUC   domain.ChatUsecase
	presence domain.PresenceReader
}

// NewChatHandler registers chat routes. sendLimit throttles message posting.
func NewChatHandler(r *gin.RouterGroup, chatUC domain.ChatUsecase, presence domain.PresenceReader, sendLimit gin.HandlerFunc) {
	handler := &ChatHandler{chatUC: chatUC, presence: presence}

	chats := r.Group("/chats")
	{
		chats.GET("", handler.ListRooms)
		chats.GET("/unread", handler.UnreadTotal)
		chats.GET("/online", handler.OnlineUsers)
		chats.GET("/direct/:userId", handler.OpenDirectChat)
		chats.GET("/:roomId", handler.GetRoom)
		chats.GET("/:roomId/messages", handler.ListMessages)
		chats.POST("/:roomId/messages", sendLimit, handler.SendMessage)
		chats.PUT("/:roomId/read", handler.MarkRead)
		chats.GET("/:roomId/unread", handler.CountUnread)
	}
}

// SendMessageRequest is the body of a new chat message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,notblank,maxrunes" example:"Hi! Thanks for the match."`
}

type unreadCount struct {
	Unread int64 `json:"unread"`
}

type readResult struct {
	Updated int64 `json:"updated"`
}

// ListRooms godoc
// @Summary      List my chats
// @Description  Rooms newest first, each with the last message and my unread count
// @Tags         chats
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.RoomSummary}
// @Router       /chats [get]
// @Security     BearerAuth
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, _ := currentUser(c)

	rooms, err := h.chatUC.ListRooms(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Chats retrieved", rooms)
}

// UnreadTotal godoc
// @Summary      Total unread messages
// @Tags         chats
// @Produce      json
// @Success      200  {object}  response.Response{data=unreadCount}
// @Router       /chats/unread [get]
// @Security     BearerAuth
func (h *ChatHandler) UnreadTotal(c *gin.Context) {
	userID, _ := currentUser(c)

	n, err := h.chatUC.UnreadTotal(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Unread count retrieved", unreadCount{Unread: n})
}

// OnlineUsers godoc
// @Summary      Users currently online
// @Tags         chats
// @Produce      json
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /chats/online [get]
// @Security     BearerAuth
func (h *ChatHandler) OnlineUsers(c *gin.Context) {
	users := h.presence.OnlineUsers()
	if users == nil {
		users = []string{}
	}
	response.Success(c, http.StatusOK, "Online users retrieved", users)
}

// OpenDirectChat godoc
// @Summary      Open a direct chat
// @Description  Returns the room shared with another user, creating it on first use
// @Tags         chats
// @Produce      json
// @Param        userId  path      string  true  "Other user ID"
// @Success      200     {object}  response.Response{data=domain.RoomDetail}
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /chats/direct/{userId} [get]
// @Security     BearerAuth
func (h *ChatHandler) OpenDirectChat(c *gin.Context) {
	userID, _ := currentUser(c)

	room, err := h.chatUC.GetOrCreateDirectChat(c.Request.Context(), userID, c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Chat room ready", room)
}

// GetRoom godoc
// @Summary      Get a chat room
// @Tags         chats
// @Produce      json
// @Param        roomId  path      int  true  "Chat room ID"
// @Success      200     {object}  response.Response{data=domain.RoomDetail}
// @Failure      403     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /chats/{roomId} [get]
// @Security     BearerAuth
func (h *ChatHandler) GetRoom(c *gin.Context) {
	userID, _ := currentUser(c)

	roomID, ok := pathID(c, "roomId", "chat room ID")
	if !ok {
		return
	}

	room, err := h.chatUC.GetRoom(c.Request.Context(), roomID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Chat room retrieved", room)
}

// ListMessages godoc
// @Summary      Chat history
// @Description  Messages oldest first, each flagged is_own for the caller
// @Tags         chats
// @Produce      json
// @Param        roomId  path      int  true  "Chat room ID"
// @Success      200     {object}  response.Response{data=[]domain.MessageView}
// @Failure      403     {object}  response.Response
// @Router       /chats/{roomId}/messages [get]
// @Security     BearerAuth
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, _ := currentUser(c)

	roomID, ok := pathID(c, "roomId", "chat room ID")
	if !ok {
		return
	}

	messages, err := h.chatUC.ListMessages(c.Request.Context(), roomID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Messages retrieved", messages)
}

// SendMessage godoc
// @Summary      Send a message
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        roomId  path      int                 true  "Chat room ID"
// @Param        body    body      SendMessageRequest  true  "Message"
// @Success      201     {object}  response.Response{data=domain.MessageView}
// @Failure      400     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Failure      429     {object}  response.Response
// @Router       /chats/{roomId}/messages [post]
// @Security     BearerAuth
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, _ := currentUser(c)

	roomID, ok := pathID(c, "roomId", "chat room ID")
	if !ok {
		return
	}

	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.chatUC.SendMessage(c.Request.Context(), roomID, userID, req.Content)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Message sent", msg)
}

// MarkRead godoc
// @Summary      Mark a chat read
// @Description  Marks every message from the other participant as READ. Idempotent
// @Tags         chats
// @Produce      json
// @Param        roomId  path      int  true  "Chat room ID"
// @Success      200     {object}  response.Response{data=readResult}
// @Failure      403     {object}  response.Response
// @Router       /chats/{roomId}/read [put]
// @Security     BearerAuth
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, _ := currentUser(c)

	roomID, ok := pathID(c, "roomId", "chat room ID")
	if !ok {
		return
	}

	n, err := h.chatUC.MarkRead(c.Request.Context(), roomID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Messages marked as read", readResult{Updated: n})
}

// CountUnread godoc
// @Summary      Unread messages in a room
// @Tags         chats
// @Produce      json
// @Param        roomId  path      int  true  "Chat room ID"
// @Success      200     {object}  response.Response{data=unreadCount}
// @Failure      403     {object}  response.Response
// @Router       /chats/{roomId}/unread [get]
// @Security     BearerAuth
func (h *ChatHandler) CountUnread(c *gin.Context) {
	userID, _ := currentUser(c)

	roomID, ok := pathID(c, "roomId", "chat room ID")
	if !ok {
		return
	}

	n, err := h.chatUC.CountUnread(c.Request.Context(), roomID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Unread count retrieved", unreadCount{Unread: n})
}
