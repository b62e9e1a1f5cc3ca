package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-jobswipe-backend/internal/delivery/http/middleware"
	"go-jobswipe-backend/internal/delivery/http/response"
	"go-jobswipe-backend/pkg/logger"
)

// SessionServer runs an upgraded websocket for an authenticated user.
type SessionServer interface {
	Serve(ws *websocket.Conn, userID string)
}

type RealtimeHandler struct {
	auth     *middleware.Authenticator
	sessions SessionServer
	upgrader websocket.Upgrader
}

// NewRealtimeHandler registers the websocket endpoint on the public group: the token is
// checked here before upgrading since browsers cannot send headers on the handshake.
func NewRealtimeHandler(r *gin.RouterGroup, auth *middleware.Authenticator, sessions SessionServer, origins *middleware.OriginPolicy) {
	handler := &RealtimeHandler{
		auth:     auth,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     origins.CheckOrigin,
		},
	}
	r.GET("/ws", handler.Connect)
}

// Connect godoc
// @Summary      Realtime channel
// @Description  Upgrades to a websocket carrying chat, read receipt, presence and notification events.
// @Description  The token may be passed as ?access_token= when headers are unavailable.
// @Tags         realtime
// @Param        access_token  query  string  false  "Access token"
// @Success      101
// @Failure      401  {object}  response.Response
// @Router       /ws [get]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	token, _ := middleware.BearerToken(c, true)
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "Access token required", nil)
		return
	}

	user, err := h.auth.Resolve(c, token, true)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Log.Debug("Websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	h.sessions.Serve(ws, user.ID)
}
