package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-jobswipe-backend/internal/delivery/http/middleware"
	"go-jobswipe-backend/internal/delivery/http/response"
	"go-jobswipe-backend/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MatchHandler struct {
	matchUC domain.MatchUsecase
	chatUC  domain.ChatUsecase
}

func NewMatchHandler(r *gin.RouterGroup, matchUC domain.MatchUsecase, chatUC domain.ChatUsecase) {
	handler := &MatchHandler{matchUC: matchUC, chatUC: chatUC}

	matches := r.Group("/matches")
	{
		matches.GET("", handler.ListMatches)
		matches.GET("/export", middleware.RequireRole(domain.RoleCompany), handler.ExportMatches)
		matches.GET("/:id", handler.GetMatch)
		matches.GET("/:id/chat", handler.OpenMatchChat)
	}
}

// ListMatches godoc
// @Summary      List my matches
// @Description  Seekers see their matches, companies the matches on their jobs. Newest first
// @Tags         matches
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Match}
// @Failure      403  {object}  response.Response
// @Router       /matches [get]
// @Security     BearerAuth
func (h *MatchHandler) ListMatches(c *gin.Context) {
	userID, role := currentUser(c)

	matches, err := h.matchUC.ListMatches(c.Request.Context(), userID, role)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Matches retrieved", matches)
}

// GetMatch godoc
// @Summary      Get a match
// @Tags         matches
// @Produce      json
// @Param        id  path      int  true  "Match ID"
// @Success      200 {object}  response.Response{data=domain.Match}
// @Failure      403 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /matches/{id} [get]
// @Security     BearerAuth
func (h *MatchHandler) GetMatch(c *gin.Context) {
	userID, _ := currentUser(c)

	id, ok := pathID(c, "id", "match ID")
	if !ok {
		return
	}

	m, err := h.matchUC.GetMatch(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Match retrieved", m)
}

// OpenMatchChat godoc
// @Summary      Open the chat for a match
// @Description  Returns the match's chat room, creating it if needed
// @Tags         matches
// @Produce      json
// @Param        id  path      int  true  "Match ID"
// @Success      200 {object}  response.Response{data=domain.RoomDetail}
// @Failure      403 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /matches/{id}/chat [get]
// @Security     BearerAuth
func (h *MatchHandler) OpenMatchChat(c *gin.Context) {
	userID, _ := currentUser(c)

	id, ok := pathID(c, "id", "match ID")
	if !ok {
		return
	}

	room, err := h.chatUC.GetOrCreateForMatch(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Chat room ready", room)
}

// ExportMatches godoc
// @Summary      Export matches to Excel
// @Description  Download the company's matches as an .xlsx file (Company only)
// @Tags         matches
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    file
// @Failure      403  {object}  response.Response
// @Router       /matches/export [get]
// @Security     BearerAuth
func (h *MatchHandler) ExportMatches(c *gin.Context) {
	userID, _ := currentUser(c)

	data, filename, err := h.matchUC.ExportMatches(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
