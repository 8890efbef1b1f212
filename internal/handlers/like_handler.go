package handlers

import (
	"net/http"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// subjectRoutes maps URL path segments to the subject kinds they address
var subjectRoutes = []struct {
	path string
	kind models.SubjectType
}{
	{"collections", models.SubjectCollection},
	{"videos", models.SubjectVideo},
	{"comments", models.SubjectComment},
}

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes      repositories.LikeRepository
	engagement *services.EngagementService
}

func NewLikeHandler(likes repositories.LikeRepository, engagement *services.EngagementService) *LikeHandler {
	return &LikeHandler{likes: likes, engagement: engagement}
}

// RegisterLikeRoutes registers like routes for every likeable subject kind
func (h *LikeHandler) RegisterLikeRoutes(pub, priv *echo.Group) {
	for _, r := range subjectRoutes {
		pub.GET("/"+r.path+"/:id/likes", h.likeStatus(r.kind))
		priv.POST("/"+r.path+"/:id/like", h.like(r.kind))
		priv.DELETE("/"+r.path+"/:id/like", h.unlike(r.kind))
	}
}

func subjectFromPath(c echo.Context, kind models.SubjectType) (models.SubjectRef, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return models.SubjectRef{}, err
	}
	return models.Ref(kind, id), nil
}

func (h *LikeHandler) like(kind models.SubjectType) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := requireUser(c)
		if err != nil {
			return err
		}
		ref, err := subjectFromPath(c, kind)
		if err != nil {
			return err
		}
		if _, err := h.engagement.Like(c.Request().Context(), uid, ref); err != nil {
			return httpError(c, err)
		}
		return ok(c, http.StatusCreated, echo.Map{"liked": true})
	}
}

func (h *LikeHandler) unlike(kind models.SubjectType) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := requireUser(c)
		if err != nil {
			return err
		}
		ref, err := subjectFromPath(c, kind)
		if err != nil {
			return err
		}
		if err := h.engagement.Unlike(c.Request().Context(), uid, ref); err != nil {
			return httpError(c, err)
		}
		return ok(c, http.StatusOK, echo.Map{"liked": false})
	}
}

// likeStatus returns the like count and, for signed-in viewers, whether they liked it
func (h *LikeHandler) likeStatus(kind models.SubjectType) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := subjectFromPath(c, kind)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		if err := h.engagement.CanSee(ctx, getUserIDFromContext(c), ref); err != nil {
			return httpError(c, err)
		}
		count, err := h.likes.CountLikes(ctx, ref)
		if err != nil {
			return httpError(c, err)
		}
		out := echo.Map{"count": count, "liked": false}
		if uid := getUserIDFromContext(c); uid != 0 {
			liked, err := h.likes.HasLiked(ctx, uid, ref)
			if err != nil {
				return httpError(c, err)
			}
			out["liked"] = liked
		}
		return ok(c, http.StatusOK, out)
	}
}
