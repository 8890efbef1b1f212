package handlers

import (
	"net/http"

	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	engagement *services.EngagementService
}

func NewFollowHandler(engagement *services.EngagementService) *FollowHandler {
	return &FollowHandler{engagement: engagement}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
}

func (h *FollowHandler) FollowUser(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.engagement.Follow(c.Request().Context(), uid, targetID); err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"following": true})
}

func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.engagement.Unfollow(c.Request().Context(), uid, targetID); err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"following": false})
}
