package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	ledger    *services.NotificationLedger
	directory *services.Directory
	logger    logrus.FieldLogger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(ledger *services.NotificationLedger, directory *services.Directory, logger logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{ledger: ledger, directory: directory, logger: logger}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, notifications []models.Notification) []EnrichedNotification {
	ids := make([]uint, len(notifications))
	for i, n := range notifications {
		ids[i] = n.ActorID
	}
	actors, err := h.directory.Summaries(c.Request().Context(), ids)
	if err != nil {
		h.logger.WithError(err).Warn("notifications served without actor profiles")
		actors = map[uint]models.UserCompact{}
	}

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		actor, found := actors[n.ActorID]
		if !found {
			actor = models.UserCompact{ID: n.ActorID}
		}
		enriched[i] = EnrichedNotification{Notification: n, Actor: actor}
	}
	return enriched
}

// GetNotifications returns paginated notifications, optionally filtered by type and unread state
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))
	filter := models.NotificationFilter{
		Type:       models.NotificationType(c.QueryParam("type")),
		UnreadOnly: unreadOnly,
	}

	result, err := h.ledger.List(c.Request().Context(), currentUserID, page, limit, filter)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}

	return ok(c, http.StatusOK, echo.Map{
		"notifications": h.enrichNotifications(c, result.Items),
		"total":         result.Total,
		"unread_count":  result.UnreadCount,
		"has_more":      result.HasMore,
		"page":          result.Page,
		"limit":         result.PageSize,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	count, err := h.ledger.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a single notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	id, valid := parseUintParam(c, "id")
	if !valid {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}
	unread, err := h.ledger.MarkRead(c.Request().Context(), id, currentUserID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"unread_count": unread})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	changed, err := h.ledger.MarkAllRead(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"updated": changed, "unread_count": 0})
}

// DeleteNotification removes a notification
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	id, valid := parseUintParam(c, "id")
	if !valid {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}
	unread, err := h.ledger.Delete(c.Request().Context(), id, currentUserID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"unread_count": unread})
}
