package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var keepAliveInterval = 25 * time.Second

// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} service.NotificationList
// @Failure 400 {object} map[string]string
// @Router /notifications [get]
func (s *Server) listNotifications(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil || x < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = x
	}
	list, err := s.notifications.List(c.Request.Context(), actorFrom(c).ID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Mark notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} domain.Notification
// @Failure 404 {object} map[string]string
// @Router /notifications/{id}/read [post]
func (s *Server) markNotificationRead(c *gin.Context) {
	n, err := s.notifications.MarkRead(c.Request.Context(), actorFrom(c).ID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /notifications/read-all [post]
func (s *Server) markAllNotificationsRead(c *gin.Context) {
	changed, err := s.notifications.MarkAllRead(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": changed})
}

// @Summary Delete notification
// @Tags notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /notifications/{id} [delete]
func (s *Server) deleteNotification(c *gin.Context) {
	if err := s.notifications.Delete(c.Request.Context(), actorFrom(c).ID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Clear all notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /notifications [delete]
func (s *Server) clearNotifications(c *gin.Context) {
	deleted, err := s.notifications.ClearAll(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// @Summary Realtime notification feed
// @Description Server-sent events named insert, update or delete carrying the changed notification.
// @Tags notifications
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200
// @Router /notifications/stream [get]
func (s *Server) streamNotifications(c *gin.Context) {
	feed, unsubscribe := s.notifications.Subscribe(actorFrom(c).ID)
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change, ok := <-feed:
			if !ok {
				// dropped as a slow consumer; the client reconnects
				return false
			}
			c.SSEvent(strings.ToLower(string(change.Type)), change)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", "")
			return true
		}
	})
}
