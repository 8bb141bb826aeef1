package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// UserHandler serves compact profiles with the caller's follow relation
type UserHandler struct {
	directory *services.Directory
	toggles   *services.ToggleStore
	logger    logrus.FieldLogger
}

func NewUserHandler(directory *services.Directory, toggles *services.ToggleStore, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{directory: directory, toggles: toggles, logger: logger}
}

func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile) // Get own profile
	g.GET("/users/:id", h.GetUser)  // Get other user's profile by ID
}

// GetUser returns another user's profile and whether the caller follows them
func (h *UserHandler) GetUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	userID, valid := parseUintParam(c, "id")
	if !valid {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	ctx := c.Request().Context()
	profiles, err := h.directory.Summaries(ctx, []uint{userID})
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	profile, found := profiles[userID]
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	following, err := h.toggles.IsFollowing(ctx, currentUserID, userID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"user": profile, "is_following": following})
}

// GetProfile returns the current user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	return ok(c, http.StatusOK, h.directory.Summary(c.Request().Context(), currentUserID))
}
