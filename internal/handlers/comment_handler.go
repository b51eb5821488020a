package handlers

import (
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	feed *services.FeedService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(feed *services.FeedService) *CommentHandler {
	return &CommentHandler{feed: feed}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comment-post", h.CreateComment)
	g.GET("/comments/:postId", h.GetComments)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	postID, err := parseObjectID(req.PostID, "post")
	if err != nil {
		return err
	}

	comment, err := h.feed.Comment(c.Request().Context(), userID, postID, req.CommentContent)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// GetComments returns a post with its comments, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := parseObjectID(c.Param("postId"), "post")
	if err != nil {
		return err
	}

	thread, err := h.feed.PostComments(c.Request().Context(), postID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, thread)
}
