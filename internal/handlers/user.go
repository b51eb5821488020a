package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/anonto42/dreamscape/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	users *services.UserService
	feed  *services.FeedService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, feed *services.FeedService) *UserHandler {
	return &UserHandler{users: users, feed: feed}
}

// RegisterProfileRoutes registers user profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("", h.GetCurrentUser)
	g.GET("/get-users/:n", h.GetUsers)
	g.GET("/:id", h.GetUser)
	g.PATCH("/:id", h.UpdateUser)
}

// GetUsers lists n users, or all of them for n = "all"
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context(), c.Param("n"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// GetCurrentUser returns the caller with own posts, liked posts and collections
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	profile, err := h.feed.CurrentUserProfile(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetUser returns a user's public profile with posts, collections and followers
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"), "user")
	if err != nil {
		return err
	}
	profile, err := h.users.Profile(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateUser updates name and bio, and the profile picture when a "file"
// part is uploaded. Accepts multipart or JSON bodies.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseObjectID(c.Param("id"), "user")
	if err != nil {
		return err
	}

	var in services.ProfileInput
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var body struct {
			Name *string `json:"name"`
			Bio  *string `json:"bio"`
		}
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		in.Name, in.Bio = body.Name, body.Bio
		return h.updateUser(c, userID, id, in)
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if v, ok := form["name"]; ok && len(v) > 0 {
		in.Name = &v[0]
	}
	if v, ok := form["bio"]; ok && len(v) > 0 {
		in.Bio = &v[0]
	}

	file, err := c.FormFile("file")
	switch {
	case err == nil:
		if file.Size > storage.MaxImageBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Profile picture is too large")
		}
		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Unable to read uploaded file")
		}
		defer src.Close()
		if in.Image, err = io.ReadAll(src); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Unable to read uploaded file")
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read uploaded file")
	}
	return h.updateUser(c, userID, id, in)
}

func (h *UserHandler) updateUser(c echo.Context, userID, id primitive.ObjectID, in services.ProfileInput) error {
	user, err := h.users.UpdateProfile(c.Request().Context(), userID, id, in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}
