package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
	"github.com/sirupsen/logrus"
)

// StoryView is a story as seen by one viewer.
type StoryView struct {
	models.Story
	Viewed bool `json:"viewed"`
}

// AuthorGroup is every live story of one author, in query order.
type AuthorGroup struct {
	AuthorID    uint               `json:"author_id"`
	Author      models.UserCompact `json:"author"`
	IsOwn       bool               `json:"is_own"`
	HasUnviewed bool               `json:"has_unviewed"`
	Stories     []StoryView        `json:"stories"`
}

// ViewerSummary lists who has seen a story.
type ViewerSummary struct {
	StoryID string               `json:"story_id"`
	Count   int                  `json:"count"`
	Viewers []models.UserCompact `json:"viewers"`
}

// Aggregate groups stories by author and orders the groups for viewerID:
// the viewer's own group first, then groups with at least one unviewed story,
// then fully viewed groups. Groups of equal rank keep the order in which their
// first story appears in stories.
func Aggregate(stories []models.Story, viewerID uint) []AuthorGroup {
	index := make(map[uint]int)
	groups := []AuthorGroup{}
	for _, s := range stories {
		i, ok := index[s.AuthorID]
		if !ok {
			i = len(groups)
			index[s.AuthorID] = i
			groups = append(groups, AuthorGroup{
				AuthorID: s.AuthorID,
				Author:   models.UserCompact{ID: s.AuthorID},
				IsOwn:    s.AuthorID == viewerID,
			})
		}
		viewed := s.ViewedBy(viewerID)
		groups[i].Stories = append(groups[i].Stories, StoryView{Story: s, Viewed: viewed})
		if !viewed {
			groups[i].HasUnviewed = true
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groupRank(groups[a]) < groupRank(groups[b])
	})
	return groups
}

func groupRank(g AuthorGroup) int {
	switch {
	case g.IsOwn:
		return 0
	case g.HasUnviewed:
		return 1
	default:
		return 2
	}
}

// StoryAggregator serves the story feed and per-story view tracking.
type StoryAggregator struct {
	stories   repositories.StoryRepository
	follows   repositories.FollowRepository
	directory *Directory
	logger    logrus.FieldLogger
	now       func() time.Time
}

func NewStoryAggregator(stories repositories.StoryRepository, follows repositories.FollowRepository, directory *Directory, logger logrus.FieldLogger) *StoryAggregator {
	return &StoryAggregator{
		stories:   stories,
		follows:   follows,
		directory: directory,
		logger:    logger.WithField("component", "stories"),
		now:       time.Now,
	}
}

func (a *StoryAggregator) CreateStory(ctx context.Context, author uint, req models.CreateStoryRequest) (*models.Story, error) {
	if req.MediaURL == "" {
		return nil, apperr.Validation("media_url is required")
	}
	if req.MediaType != "image" && req.MediaType != "video" {
		return nil, apperr.Validation("media_type must be image or video")
	}
	now := a.now()
	story := &models.Story{
		AuthorID:  author,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		Caption:   req.Caption,
		Views:     []uint{},
		CreatedAt: now,
		ExpiresAt: now.Add(models.StoryLifetime),
	}
	if err := a.stories.CreateStory(ctx, story); err != nil {
		return nil, apperr.Internal(err)
	}
	return story, nil
}

// Feed returns the live stories of viewer and everyone viewer follows.
// Stories older than models.StoryLifetime are not returned.
func (a *StoryAggregator) Feed(ctx context.Context, viewer uint) ([]AuthorGroup, error) {
	authors, err := a.follows.GetFollowingIDs(ctx, viewer)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	authors = append(authors, viewer)

	stories, err := a.stories.GetStoriesByAuthors(ctx, authors, a.now().Add(-models.StoryLifetime))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	groups := Aggregate(stories, viewer)

	ids := make([]uint, len(groups))
	for i, g := range groups {
		ids[i] = g.AuthorID
	}
	profiles, err := a.directory.Summaries(ctx, ids)
	if err != nil {
		a.logger.WithError(err).Warn("story feed served without author profiles")
		return groups, nil
	}
	for i := range groups {
		if p, ok := profiles[groups[i].AuthorID]; ok {
			groups[i].Author = p
		}
	}
	return groups, nil
}

// MarkViewed adds viewer to the story's view set. Repeat calls succeed without change.
func (a *StoryAggregator) MarkViewed(ctx context.Context, storyID string, viewer uint) error {
	if err := a.stories.AddViewer(ctx, storyID, viewer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("story")
		}
		return apperr.Internal(err)
	}
	return nil
}

// ViewerSummary lists the story's viewers. Only the author may ask.
func (a *StoryAggregator) ViewerSummary(ctx context.Context, storyID string, requester uint) (*ViewerSummary, error) {
	story, err := a.stories.GetStoryByID(ctx, storyID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("story")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if story.AuthorID != requester {
		return nil, apperr.Forbidden("only the author can see who viewed a story")
	}

	profiles, err := a.directory.Summaries(ctx, story.Views)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	viewers := make([]models.UserCompact, 0, len(story.Views))
	for _, id := range story.Views {
		p, ok := profiles[id]
		if !ok {
			p = models.UserCompact{ID: id}
		}
		viewers = append(viewers, p)
	}
	return &ViewerSummary{StoryID: storyID, Count: len(story.Views), Viewers: viewers}, nil
}
