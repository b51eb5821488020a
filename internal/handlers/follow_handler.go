package handlers

import (
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow and follower listings
type FollowHandler struct {
	social *services.SocialService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(social *services.SocialService) *FollowHandler {
	return &FollowHandler{social: social}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.PATCH("/follow/:userIdToFollow", h.FollowUser)
	g.PATCH("/unfollow/:userIdToUnfollow", h.UnfollowUser)
	g.GET("/get-following-users/:id", h.GetFollowing)
	g.GET("/get-followed-by-users/:id", h.GetFollowers)
}

// FollowUser adds the target to the caller's following set
func (h *FollowHandler) FollowUser(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	target, err := parseObjectID(c.Param("userIdToFollow"), "user")
	if err != nil {
		return err
	}

	if err := h.social.Follow(c.Request().Context(), userID, target); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Successfully followed the user"})
}

// UnfollowUser removes the target from the caller's following set
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	target, err := parseObjectID(c.Param("userIdToUnfollow"), "user")
	if err != nil {
		return err
	}

	if err := h.social.Unfollow(c.Request().Context(), userID, target); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Successfully unfollowed the user"})
}

// GetFollowing lists the users a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"), "user")
	if err != nil {
		return err
	}
	users, err := h.social.ListFollowing(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// GetFollowers lists the users following a user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"), "user")
	if err != nil {
		return err
	}
	users, err := h.social.ListFollowers(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}
