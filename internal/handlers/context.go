package handlers

import (
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// getUserIDFromContext returns the caller id set by the JWT middleware.
func getUserIDFromContext(c echo.Context) (primitive.ObjectID, error) {
	id, ok := c.Get(middleware.UserIDKey).(primitive.ObjectID)
	if !ok || id.IsZero() {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "Request is not authorized")
	}
	return id, nil
}

// parseObjectID validates a path or body id.
func parseObjectID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+what+" ID format")
	}
	return id, nil
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
