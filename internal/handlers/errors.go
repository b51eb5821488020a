package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/anonto42/dreamscape/backend/pkg/storage"
	"github.com/labstack/echo/v4"
)

// errorRule maps a service error to a status. An empty message means the
// error text itself is shown, for errors that carry names or upstream detail.
type errorRule struct {
	target  error
	status  int
	message string
}

var errorRules = []errorRule{
	{services.ErrEmailTaken, http.StatusBadRequest, "Email already exists."},
	{services.ErrUsernameTaken, http.StatusBadRequest, "Username already exists."},
	{services.ErrUserNotExist, http.StatusBadRequest, "User doesn't exist."},
	{services.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials. Please try again."},
	{services.ErrUnauthenticated, http.StatusUnauthorized, "Request is not authorized"},
	{services.ErrInvalidCount, http.StatusBadRequest, "Number of users must be a positive integer or \"all\""},
	{services.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{services.ErrPostNotFound, http.StatusNotFound, "Post not found"},
	{services.ErrCollectionNotFound, http.StatusNotFound, "Post collection not found"},
	{services.ErrForbidden, http.StatusForbidden, "You are not authorized to modify this resource"},
	{services.ErrCannotFollowSelf, http.StatusBadRequest, "Cannot follow yourself"},
	{services.ErrAlreadyFollowing, http.StatusBadRequest, ""},
	{services.ErrNotFollowing, http.StatusBadRequest, ""},
	{services.ErrInvalidPost, http.StatusBadRequest, ""},
	{services.ErrAlreadyCollected, http.StatusConflict, "Post already collected"},
	{services.ErrEmptyComment, http.StatusBadRequest, "Comment content is required"},
	{storage.ErrUnsupportedSource, http.StatusBadRequest, "Image must be a base64 data URL or an http(s) URL"},
	{storage.ErrNotImage, http.StatusBadRequest, "Uploaded content is not an image"},
	{storage.ErrTooLarge, http.StatusBadRequest, "Image exceeds the 10 MB size limit"},
	{storage.ErrFetch, http.StatusBadRequest, "Unable to fetch image from the given URL"},
	{services.ErrImageUpload, http.StatusInternalServerError, ""},
	{services.ErrImageDelete, http.StatusInternalServerError, "Failed to delete image from storage"},
	{services.ErrEmptyPrompt, http.StatusBadRequest, "Prompt is required"},
	{services.ErrRelay, http.StatusInternalServerError, ""},
}

// toHTTPError converts a service error into an *echo.HTTPError. Unknown
// errors become a 500 carrying the error text.
func toHTTPError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			msg := rule.message
			if msg == "" {
				msg = err.Error()
			}
			return echo.NewHTTPError(rule.status, msg).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}
