package handlers

import (
	"net/http"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	stories *services.StoryAggregator
	logger  logrus.FieldLogger
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories *services.StoryAggregator, logger logrus.FieldLogger) *StoryHandler {
	return &StoryHandler{stories: stories, logger: logger}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.POST("/stories", h.CreateStory)
	g.POST("/stories/:id/view", h.MarkAsViewed)
	g.GET("/stories/:id/viewers", h.GetViewers)
}

// GetStories returns the story feed of the current user grouped by author
func (h *StoryHandler) GetStories(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	groups, err := h.stories.Feed(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, groups)
}

// CreateStory publishes a story that expires after 24 hours
func (h *StoryHandler) CreateStory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}

	var req models.CreateStoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	story, err := h.stories.CreateStory(c.Request().Context(), currentUserID, req)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusCreated, story)
}

// MarkAsViewed records that the current user viewed the story
func (h *StoryHandler) MarkAsViewed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	if err := h.stories.MarkViewed(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"viewed": true})
}

// GetViewers lists who viewed the story; author only
func (h *StoryHandler) GetViewers(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return unauthenticated()
	}
	summary, err := h.stories.ViewerSummary(c.Request().Context(), c.Param("id"), currentUserID)
	if err != nil {
		return toHTTPError(c, h.logger, err)
	}
	return ok(c, http.StatusOK, summary)
}
