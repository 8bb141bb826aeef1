package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.Comments
	logger   logrus.FieldLogger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.Comments, logger logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
}

// CreateComment creates a new comment on a post and notifies the post's author
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.comments.Create(c.Request().Context(), currentUserID, c.Param("post_id"), req.Content)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusCreated, comment)
}
