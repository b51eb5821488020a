package handlers

import (
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CollectionHandler handles bookmarking posts
type CollectionHandler struct {
	feed *services.FeedService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(feed *services.FeedService) *CollectionHandler {
	return &CollectionHandler{feed: feed}
}

// RegisterCollectionRoutes registers collection routes
func (h *CollectionHandler) RegisterCollectionRoutes(g *echo.Group) {
	g.POST("/collect-post", h.CollectPost)
	g.POST("/uncollect-post", h.UncollectPost)
}

// CollectPost bookmarks a post for the caller
func (h *CollectionHandler) CollectPost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CollectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	postID, err := parseObjectID(req.PostID, "post")
	if err != nil {
		return err
	}

	collection, err := h.feed.Collect(c.Request().Context(), userID, postID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": collection})
}

// UncollectPost removes a bookmark by its own id
func (h *CollectionHandler) UncollectPost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.UncollectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	collectionID, err := parseObjectID(req.PostCollectionID, "post collection")
	if err != nil {
		return err
	}

	collection, err := h.feed.Uncollect(c.Request().Context(), userID, collectionID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": collection})
}
