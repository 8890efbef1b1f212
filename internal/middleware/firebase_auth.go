package middleware

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// TokenVerifier checks Firebase ID tokens; *auth.Client implements it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseUserLookup maps a Firebase UID to the local account
type FirebaseUserLookup interface {
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
}

// FirebaseAuthMiddleware verifies a Firebase ID token and stores the linked local user's
// claims under UserContextKey, so handlers see the same identity as with JWT auth.
func FirebaseAuthMiddleware(verifier TokenVerifier, users FirebaseUserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if errors.Is(err, errNoBearer) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}
			user, err := users.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "No account linked to this Firebase user; sign in through /api/v1/auth/firebase-login first")
			}

			c.Set("firebaseUID", token.UID)
			c.Set(UserContextKey, &models.JwtCustomClaims{UserID: user.ID, Email: user.Email})
			return next(c)
		}
	}
}
