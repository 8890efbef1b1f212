package handlers

import (
	"net/http"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/resources"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ActivityHandler serves the visibility-filtered activity feed
type ActivityHandler struct {
	activity *services.ActivityService
	resolver *services.SubjectResolver
}

func NewActivityHandler(activity *services.ActivityService, resolver *services.SubjectResolver) *ActivityHandler {
	return &ActivityHandler{activity: activity, resolver: resolver}
}

// RegisterActivityRoutes registers feed routes; anonymous viewers see public entries only
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	g.GET("/activity", h.Feed)
	g.GET("/activity/:id", h.GetEntry)
	g.GET("/users/:id/activity", h.UserActivity)
	for _, r := range subjectRoutes {
		g.GET("/"+r.path+"/:id/activity", h.subjectActivity(r.kind))
	}
}

// preloads maps requested relations onto the gorm associations they need
func preloads(inc resources.Include) []string {
	var rel []string
	if inc.Has("actor") {
		rel = append(rel, "Actor")
	}
	if inc.Has("target_user") {
		rel = append(rel, "TargetUser")
	}
	return rel
}

func (h *ActivityHandler) list(c echo.Context, q services.FeedQuery) error {
	r := renderer(c)
	q.ViewerID = r.ViewerID
	q.Page, q.Limit = pagination(c)
	q.Preload = preloads(r.Include)
	if q.Action == "" {
		q.Action = c.QueryParam("action")
	}

	ctx := c.Request().Context()
	entries, total, err := h.activity.Feed(ctx, q)
	if err != nil {
		return httpError(c, err)
	}
	if r.Include.Has("subject") {
		refs := make([]models.SubjectRef, len(entries))
		for i := range entries {
			refs[i] = entries[i].Subject()
		}
		r.Subjects = h.resolver.ResolveAll(ctx, refs)
	}
	return okPage(c, echo.Map{"activities": r.Activities(entries)}, pageMeta(q.Page, q.Limit, total))
}

func (h *ActivityHandler) Feed(c echo.Context) error {
	return h.list(c, services.FeedQuery{})
}

func (h *ActivityHandler) UserActivity(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.list(c, services.FeedQuery{ActorID: &id})
}

func (h *ActivityHandler) subjectActivity(kind models.SubjectType) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := subjectFromPath(c, kind)
		if err != nil {
			return err
		}
		return h.list(c, services.FeedQuery{Subject: &ref})
	}
}

// GetEntry returns one entry, 404 when the viewer may not see it
func (h *ActivityHandler) GetEntry(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	r := renderer(c)
	ctx := c.Request().Context()
	entry, err := h.activity.Get(ctx, id, r.ViewerID, preloads(r.Include)...)
	if err != nil {
		return httpError(c, err)
	}
	if r.Include.Has("subject") {
		r.Subjects = h.resolver.ResolveAll(ctx, []models.SubjectRef{entry.Subject()})
	}
	return ok(c, http.StatusOK, r.Activity(*entry))
}
