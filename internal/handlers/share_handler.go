package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ShareHandler creates collection share links and records their clicks and views
type ShareHandler struct {
	shares *services.ShareService
}

func NewShareHandler(shares *services.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

// RegisterShareRoutes registers share routes. Tracking endpoints are public so
// link recipients need no account.
func (h *ShareHandler) RegisterShareRoutes(pub, priv *echo.Group) {
	priv.POST("/collections/:id/shares", h.CreateShare)
	priv.GET("/collections/:id/shares", h.ListShares)
	pub.POST("/shares/:id/click", h.TrackClick)
	pub.POST("/shares/:id/view", h.TrackView)
	pub.GET("/shares/token/:token", h.ResolveToken)
}

func (h *ShareHandler) CreateShare(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	collectionID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.CreateShareRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	share, err := h.shares.Share(c.Request().Context(), services.ShareInput{
		CollectionID: collectionID,
		UserID:       &uid,
		Platform:     req.Platform,
		ShareType:    req.ShareType,
		TTL:          time.Duration(req.TTLHours) * time.Hour,
		Metadata:     req.Metadata,
	})
	if err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusCreated, renderer(c).Share(*share))
}

// ListShares is limited to the collection owner
func (h *ShareHandler) ListShares(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	collectionID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.shares.ListShares(c.Request().Context(), uid, collectionID)
	if err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"shares": renderer(c).Shares(list)})
}

func (h *ShareHandler) TrackClick(c echo.Context) error {
	return h.track(c, h.shares.TrackClick)
}

func (h *ShareHandler) TrackView(c echo.Context) error {
	return h.track(c, h.shares.TrackView)
}

func (h *ShareHandler) track(c echo.Context, op func(ctx context.Context, id uint) (*models.CollectionShare, error)) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	share, err := op(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusOK, renderer(c).Share(*share))
}

// ResolveToken opens a private or temporary share; expired links answer 410
func (h *ShareHandler) ResolveToken(c echo.Context) error {
	share, err := h.shares.ResolveToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return httpError(c, err)
	}
	r := renderer(c)
	r.Include["collection"] = true
	return ok(c, http.StatusOK, r.Share(*share))
}
