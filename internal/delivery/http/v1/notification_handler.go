package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-jobswipe-backend/internal/delivery/http/response"
	"go-jobswipe-backend/internal/domain"
)

type NotificationHandler struct {
	notificationUC domain.NotificationUsecase
}

func NewNotificationHandler(r *gin.RouterGroup, notificationUC domain.NotificationUsecase) {
	handler := &NotificationHandler{notificationUC: notificationUC}

	notifications := r.Group("/notifications")
	{
		notifications.GET("", handler.ListNotifications)
		notifications.GET("/unread", handler.UnreadCount)
		notifications.PUT("/read-all", handler.MarkAllRead)
		notifications.PUT("/:id/read", handler.MarkRead)
	}
}

// ListNotifications godoc
// @Summary      List my notifications
// @Description  Newest first
// @Tags         notifications
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size (max 100)"
// @Success      200  {object}  response.Response{data=domain.Page[domain.Notification]}
// @Router       /notifications [get]
// @Security     BearerAuth
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, _ := currentUser(c)
	page, size := pageParams(c)

	notifications, err := h.notificationUC.ListNotifications(c.Request.Context(), userID, page, size)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notifications retrieved", notifications)
}

// UnreadCount godoc
// @Summary      Unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response{data=unreadCount}
// @Router       /notifications/unread [get]
// @Security     BearerAuth
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, _ := currentUser(c)

	n, err := h.notificationUC.UnreadNotifications(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Unread count retrieved", unreadCount{Unread: n})
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id  path      int  true  "Notification ID"
// @Success      200 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /notifications/{id}/read [put]
// @Security     BearerAuth
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := currentUser(c)

	id, ok := pathID(c, "id", "notification ID")
	if !ok {
		return
	}

	if err := h.notificationUC.MarkNotificationRead(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response{data=readResult}
// @Router       /notifications/read-all [put]
// @Security     BearerAuth
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := currentUser(c)

	n, err := h.notificationUC.MarkAllNotificationsRead(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notifications marked as read", readResult{Updated: n})
}
