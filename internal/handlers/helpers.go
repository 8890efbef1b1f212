package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/middleware"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/resources"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user's ID, 0 when anonymous
func getUserIDFromContext(c echo.Context) uint {
	return middleware.UserID(c)
}

func viewerOf(c echo.Context) *uint {
	if id := getUserIDFromContext(c); id != 0 {
		return &id
	}
	return nil
}

func requireUser(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}

func pageMeta(page, limit int, total int64) echo.Map {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func okPage(c echo.Context, data any, meta echo.Map) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data, "meta": meta})
}

func renderer(c echo.Context) resources.Renderer {
	return resources.Renderer{
		Now:      time.Now(),
		ViewerID: viewerOf(c),
		Include:  resources.ParseInclude(c.QueryParam("include")),
	}
}

// httpError maps repository and service errors onto HTTP status codes
func httpError(c echo.Context, err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidVisibility),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrInvalidSubject),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrSelfAction):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyExists), errors.Is(err, repositories.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	case errors.Is(err, services.ErrShareExpired):
		return echo.NewHTTPError(http.StatusGone, "Share link has expired")
	}
	logging.Ctx(c.Request().Context()).Error().Err(err).Str("route", c.Path()).Msg("request failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// bindValid binds the request body into req and runs the registered validator
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
