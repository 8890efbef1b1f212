package handlers

import (
	"net/http"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CollectionHandler serves collection CRUD and membership
type CollectionHandler struct {
	collections repositories.CollectionRepository
	engagement  *services.EngagementService
}

func NewCollectionHandler(collections repositories.CollectionRepository, engagement *services.EngagementService) *CollectionHandler {
	return &CollectionHandler{collections: collections, engagement: engagement}
}

func (h *CollectionHandler) RegisterCollectionRoutes(pub, priv *echo.Group) {
	pub.GET("/collections/:id", h.GetCollection)
	pub.GET("/collections/slug/:slug", h.GetCollectionBySlug)
	pub.GET("/users/:id/collections", h.ListUserCollections)

	priv.POST("/collections", h.CreateCollection)
	priv.DELETE("/collections/:id", h.DeleteCollection)
	priv.POST("/collections/:id/videos", h.AddVideo)
}

// visible hides other users' private collections
func visible(c echo.Context, col *models.Collection) bool {
	return col.IsPublic || col.UserID == getUserIDFromContext(c)
}

func (h *CollectionHandler) GetCollection(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	col, err := h.collections.GetCollectionByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	if !visible(c, col) {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	// reload through the slug path to get the ordered videos
	col, err = h.collections.GetCollectionBySlug(ctx, col.Slug)
	if err != nil {
		return httpError(c, err)
	}
	return h.renderCollection(c, col)
}

func (h *CollectionHandler) GetCollectionBySlug(c echo.Context) error {
	col, err := h.collections.GetCollectionBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(c, err)
	}
	if !visible(c, col) {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return h.renderCollection(c, col)
}

func (h *CollectionHandler) renderCollection(c echo.Context, col *models.Collection) error {
	r := renderer(c)
	r.Include["user"] = true
	r.Include["videos"] = true
	return ok(c, http.StatusOK, r.Collection(*col))
}

func (h *CollectionHandler) ListUserCollections(c echo.Context) error {
	ownerID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	page, limit := pagination(c)
	includePrivate := getUserIDFromContext(c) == ownerID
	list, total, err := h.collections.ListByOwner(c.Request().Context(), ownerID, includePrivate, page, limit)
	if err != nil {
		return httpError(c, err)
	}
	return okPage(c, echo.Map{"collections": renderer(c).Collections(list)}, pageMeta(page, limit, total))
}

func (h *CollectionHandler) CreateCollection(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	var req models.CreateCollectionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	col, err := h.engagement.CreateCollection(c.Request().Context(), uid, req)
	if err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusCreated, renderer(c).Collection(*col))
}

func (h *CollectionHandler) DeleteCollection(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.engagement.DeleteCollection(c.Request().Context(), uid, id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CollectionHandler) AddVideo(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.AddVideoRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	item, err := h.engagement.AddVideo(c.Request().Context(), uid, id, req.YouTubeID)
	if err != nil {
		return httpError(c, err)
	}
	out := echo.Map{"collection_id": item.CollectionID, "position": item.Position, "added_at": item.AddedAt}
	if item.Video != nil {
		out["video"] = renderer(c).Video(*item.Video)
	}
	return ok(c, http.StatusCreated, out)
}
