package handlers

import (
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggling
type LikeHandler struct {
	feed *services.FeedService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(feed *services.FeedService) *LikeHandler {
	return &LikeHandler{feed: feed}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PATCH("/like-post/:postId", h.LikePost)
}

// LikePost likes the post, or unlikes it when the caller already liked it,
// and returns the updated post
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	postID, err := parseObjectID(c.Param("postId"), "post")
	if err != nil {
		return err
	}

	post, err := h.feed.ToggleLike(c.Request().Context(), userID, postID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}
