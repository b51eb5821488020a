package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserIDKey is the echo context key holding the authenticated user's ObjectID.
const UserIDKey = "userID"

// Authenticator resolves a bearer token to an existing user's id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (primitive.ObjectID, error)
}

// JWTAuthMiddleware checks for a valid bearer token whose user still exists
// and stores the caller id in the context. isAuthError separates rejected
// credentials (401) from lookup failures (500); nil treats every error as 401.
func JWTAuthMiddleware(auth Authenticator, isAuthError func(error) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization token required")
			}

			// Expecting "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			userID, err := auth.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				if isAuthError != nil && !isAuthError(err) {
					return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Request is not authorized").SetInternal(err)
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// IsAuthErrorFunc builds the classifier passed to JWTAuthMiddleware.
func IsAuthErrorFunc(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}
