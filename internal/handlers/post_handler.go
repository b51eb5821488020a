package handlers

import (
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	feed *services.FeedService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(feed *services.FeedService) *PostHandler {
	return &PostHandler{feed: feed}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("", h.GetOwnPosts)
	g.POST("/create", h.CreatePost)
	g.PATCH("/update", h.UpdatePost)
	g.POST("/delete", h.DeletePost)
	g.GET("/:id", h.GetPost)
	g.GET("/user-posts/:id", h.GetUserPosts)
}

// GetOwnPosts lists the caller's posts
func (h *PostHandler) GetOwnPosts(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	posts, err := h.feed.OwnPosts(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": posts})
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.PostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.feed.CreatePost(c.Request().Context(), userID, services.PostInputFromRequest(req))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

// UpdatePost updates an existing post; the body names the post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.PostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	postID, err := parseObjectID(req.PostID, "post")
	if err != nil {
		return err
	}

	post, err := h.feed.UpdatePost(c.Request().Context(), userID, postID, services.PostInputFromRequest(req))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// DeletePost deletes a post together with its collections and comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.PostIDRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	postID, err := parseObjectID(req.PostID, "post")
	if err != nil {
		return err
	}

	post, err := h.feed.DeletePost(c.Request().Context(), userID, postID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseObjectID(c.Param("id"), "post")
	if err != nil {
		return err
	}
	post, err := h.feed.PostByID(c.Request().Context(), postID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": post})
}

// GetUserPosts lists a user's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	ownerID, err := parseObjectID(c.Param("id"), "user")
	if err != nil {
		return err
	}
	posts, err := h.feed.UserPosts(c.Request().Context(), ownerID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}
