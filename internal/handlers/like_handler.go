package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// LikeHandler handles like toggles on posts and comments
type LikeHandler struct {
	toggles *services.ToggleStore
	logger  logrus.FieldLogger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(toggles *services.ToggleStore, logger logrus.FieldLogger) *LikeHandler {
	return &LikeHandler{toggles: toggles, logger: logger}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/like", h.TogglePostLike)
	g.POST("/comments/:comment_id/like", h.ToggleCommentLike)
	g.GET("/likes/:kind/:target_id", h.GetLikeStatus)
}

// TogglePostLike likes or unlikes a post
func (h *LikeHandler) TogglePostLike(c echo.Context) error {
	return h.toggle(c, models.TargetPost, c.Param("post_id"))
}

// ToggleCommentLike likes or unlikes a comment
func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	return h.toggle(c, models.TargetComment, c.Param("comment_id"))
}

func (h *LikeHandler) toggle(c echo.Context, kind models.TargetKind, targetID string) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	res, err := h.toggles.ToggleLike(c.Request().Context(), currentUserID, kind, targetID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"liked": res.Active})
}

// GetLikeStatus returns the like count and whether the current user liked the target
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	status, err := h.toggles.LikeStatus(c.Request().Context(), currentUserID, models.TargetKind(c.Param("kind")), c.Param("target_id"))
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, status)
}
