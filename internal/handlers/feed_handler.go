package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the post listings
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/recent", h.GetRecent)
	g.GET("/infinite", h.GetInfinite)
	g.GET("/followers", h.GetFollowed)
	g.GET("/search", h.Search)
}

// GetRecent returns the newest posts
func (h *FeedHandler) GetRecent(c echo.Context) error {
	posts, err := h.feed.RecentPosts(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// GetInfinite pages through all posts; a missing or invalid page is page 1
func (h *FeedHandler) GetInfinite(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	posts, page, err := h.feed.InfinitePosts(c.Request().Context(), page)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts, "page": page})
}

// GetFollowed returns posts by the caller and the users the caller follows
func (h *FeedHandler) GetFollowed(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	posts, err := h.feed.FollowedPosts(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// Search matches the search query parameter against post text and tags
func (h *FeedHandler) Search(c echo.Context) error {
	posts, err := h.feed.SearchPosts(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}
