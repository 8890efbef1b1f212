package handlers

import (
	"net/http"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment HTTP requests on collections and videos
type CommentHandler struct {
	comments   repositories.CommentRepository
	engagement *services.EngagementService
}

func NewCommentHandler(comments repositories.CommentRepository, engagement *services.EngagementService) *CommentHandler {
	return &CommentHandler{comments: comments, engagement: engagement}
}

// RegisterCommentRoutes registers comment routes for commentable subject kinds
func (h *CommentHandler) RegisterCommentRoutes(pub, priv *echo.Group) {
	for _, r := range subjectRoutes {
		if r.kind == models.SubjectComment {
			continue
		}
		pub.GET("/"+r.path+"/:id/comments", h.list(r.kind))
		priv.POST("/"+r.path+"/:id/comments", h.create(r.kind))
	}
	priv.DELETE("/comments/:id", h.DeleteComment)
}

func (h *CommentHandler) list(kind models.SubjectType) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := subjectFromPath(c, kind)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		if err := h.engagement.CanSee(ctx, getUserIDFromContext(c), ref); err != nil {
			return httpError(c, err)
		}
		page, limit := pagination(c)
		list, total, err := h.comments.ListComments(ctx, ref, page, limit)
		if err != nil {
			return httpError(c, err)
		}
		return okPage(c, echo.Map{"comments": renderer(c).Comments(list)}, pageMeta(page, limit, total))
	}
}

func (h *CommentHandler) create(kind models.SubjectType) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := requireUser(c)
		if err != nil {
			return err
		}
		ref, err := subjectFromPath(c, kind)
		if err != nil {
			return err
		}
		var req models.CreateCommentRequest
		if err := bindValid(c, &req); err != nil {
			return err
		}
		ctx := c.Request().Context()
		comment, err := h.engagement.Comment(ctx, uid, ref, req.Body)
		if err != nil {
			return httpError(c, err)
		}
		if full, err := h.comments.GetCommentByID(ctx, comment.ID); err == nil {
			comment = full
		}
		return ok(c, http.StatusCreated, renderer(c).Comment(*comment))
	}
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.engagement.DeleteComment(c.Request().Context(), uid, id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
