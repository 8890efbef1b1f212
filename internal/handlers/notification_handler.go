package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/resources"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
	resolver      *services.SubjectResolver
}

func NewNotificationHandler(notifications *services.NotificationService, resolver *services.SubjectResolver) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, resolver: resolver}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.GET("/notifications/:id", h.GetNotification)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/:id/unread", h.MarkAsUnread)
}

// notificationRenderer always loads actors; subjects are resolved on request
func (h *NotificationHandler) notificationRenderer(c echo.Context, list []models.Notification) resources.Renderer {
	r := renderer(c)
	r.Include["actor"] = true
	if r.Include.Has("subject") {
		refs := make([]models.SubjectRef, 0, len(list))
		for _, n := range list {
			if n.SubjectType != "" {
				refs = append(refs, n.Subject())
			}
		}
		r.Subjects = h.resolver.ResolveAll(c.Request().Context(), refs)
	}
	return r
}

// GetNotifications returns paginated notifications, ?unread=true for unread only
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit := pagination(c)
	unreadOnly := c.QueryParam("unread") == "true"

	list, total, err := h.notifications.List(c.Request().Context(), uid, unreadOnly, page, limit)
	if err != nil {
		return httpError(c, err)
	}
	r := h.notificationRenderer(c, list)
	return okPage(c, echo.Map{"notifications": r.Notifications(list)}, pageMeta(page, limit, total))
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	groups, err := h.notifications.Grouped(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	unreadCount, err := h.notifications.UnreadCount(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}

	all := make([]models.Notification, 0, len(groups.Today)+len(groups.Yesterday)+len(groups.ThisWeek)+len(groups.Older))
	all = append(append(append(append(all, groups.Today...), groups.Yesterday...), groups.ThisWeek...), groups.Older...)
	r := h.notificationRenderer(c, all)
	return ok(c, http.StatusOK, echo.Map{
		"notifications": echo.Map{
			"today":     r.Notifications(groups.Today),
			"yesterday": r.Notifications(groups.Yesterday),
			"thisWeek":  r.Notifications(groups.ThisWeek),
			"older":     r.Notifications(groups.Older),
		},
		"unreadCount": unreadCount,
	})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), uid)
	if err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

func (h *NotificationHandler) GetNotification(c echo.Context) error {
	return h.single(c, h.notifications.Get)
}

// MarkAsRead is idempotent: read_at keeps its first value
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	return h.single(c, h.notifications.MarkRead)
}

func (h *NotificationHandler) MarkAsUnread(c echo.Context) error {
	return h.single(c, h.notifications.MarkUnread)
}

type notificationOp func(ctx context.Context, id, recipientID uint) (*models.Notification, error)

func (h *NotificationHandler) single(c echo.Context, op notificationOp) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	n, err := op(c.Request().Context(), id, uid)
	if err != nil {
		return httpError(c, err)
	}
	r := h.notificationRenderer(c, []models.Notification{*n})
	return ok(c, http.StatusOK, r.Notification(*n))
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	n, err := h.notifications.MarkAllRead(c.Request().Context(), uid)
	if err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"updated": n})
}
