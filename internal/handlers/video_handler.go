package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/anonto42/vidshelf/backend/pkg/youtube"
	"github.com/labstack/echo/v4"
)

// VideoHandler serves stored videos and triggers YouTube enrichment
type VideoHandler struct {
	videos   repositories.VideoRepository
	metadata repositories.VideoMetadataRepository
	enhancer *services.VideoEnhancementService
}

// NewVideoHandler wires the handler. metadata and enhancer are nil when MongoDB or the
// YouTube key are not configured.
func NewVideoHandler(videos repositories.VideoRepository, metadata repositories.VideoMetadataRepository, enhancer *services.VideoEnhancementService) *VideoHandler {
	return &VideoHandler{videos: videos, metadata: metadata, enhancer: enhancer}
}

func (h *VideoHandler) RegisterVideoRoutes(pub, priv *echo.Group) {
	pub.GET("/videos/:id", h.GetVideo)
	priv.POST("/videos/:id/enhance", h.Enhance)
}

// GetVideo returns a video; ?include=metadata adds the raw YouTube payload when stored
func (h *VideoHandler) GetVideo(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	video, err := h.videos.GetVideoByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}

	r := renderer(c)
	out := r.Video(*video)
	if r.Include.Has("metadata") {
		out["metadata"] = nil
		if h.metadata != nil {
			meta, err := h.metadata.GetByYouTubeID(ctx, video.YouTubeID)
			switch {
			case err == nil:
				out["metadata"] = meta
			case !errors.Is(err, repositories.ErrNotFound):
				return httpError(c, err)
			}
		}
	}
	return ok(c, http.StatusOK, out)
}

func (h *VideoHandler) Enhance(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	if h.enhancer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Video enhancement is not configured")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	video, err := h.enhancer.Enhance(c.Request().Context(), id)
	if errors.Is(err, youtube.ErrVideoNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Video not found on YouTube")
	}
	if err != nil {
		return httpError(c, err)
	}
	return ok(c, http.StatusOK, renderer(c).Video(*video))
}
