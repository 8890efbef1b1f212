package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// UserContextKey is where the authenticated user's claims live in the echo context
const UserContextKey = "user"

var errNoBearer = errors.New("missing bearer token")

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errNoBearer
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}

// ParseToken validates an HS256 token signed with secret
func ParseToken(secret, tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func authenticate(c echo.Context, secret string) error {
	raw, err := bearerToken(c)
	if err != nil {
		return err
	}
	claims, err := ParseToken(secret, raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	c.Set(UserContextKey, claims)
	return nil
}

// JWTAuthMiddleware rejects requests without a valid JWT and stores its claims
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticate(c, secret); err != nil {
				if errors.Is(err, errNoBearer) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
				}
				return err
			}
			return next(c)
		}
	}
}

// Optional applies mw only to requests that carry an Authorization header, so anonymous
// requests pass through while a presented credential must still be valid.
func Optional(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := mw(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			return guarded(c)
		}
	}
}

func OptionalJWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return Optional(JWTAuthMiddleware(secret))
}

// UserID returns the authenticated user's id, or 0 for anonymous requests
func UserID(c echo.Context) uint {
	if claims, ok := c.Get(UserContextKey).(*models.JwtCustomClaims); ok && claims != nil {
		return claims.UserID
	}
	return 0
}
