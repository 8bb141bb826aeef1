package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	toggles *services.ToggleStore
	logger  logrus.FieldLogger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(toggles *services.ToggleStore, logger logrus.FieldLogger) *FollowHandler {
	return &FollowHandler{toggles: toggles, logger: logger}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.ToggleFollow)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/follow-status", h.GetFollowStatus)
}

// ToggleFollow follows the user, or unfollows if already following
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	targetID, valid := parseUintParam(c, "id")
	if !valid {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	res, err := h.toggles.ToggleFollow(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"following": res.Active})
}

// GetFollowers lists who follows the user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, valid := parseUintParam(c, "id")
	if !valid {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	followers, err := h.toggles.ListFollowers(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"followers": followers, "count": len(followers)})
}

// GetFollowing lists who the user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, valid := parseUintParam(c, "id")
	if !valid {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	following, err := h.toggles.ListFollowing(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"following": following, "count": len(following)})
}

// GetFollowStatus reports whether the current user follows the user
func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	targetID, valid := parseUintParam(c, "id")
	if !valid {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	following, err := h.toggles.IsFollowing(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"following": following})
}
