package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryRepository is an in-memory repositories.StoryRepository.
type StoryRepository struct {
	mu      sync.Mutex
	stories map[primitive.ObjectID]*models.Story
}

func NewStoryRepository() *StoryRepository {
	return &StoryRepository{stories: make(map[primitive.ObjectID]*models.Story)}
}

var _ repositories.StoryRepository = (*StoryRepository)(nil)

func (r *StoryRepository) CreateStory(_ context.Context, story *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	if story.Views == nil {
		story.Views = []uint{}
	}
	cp := *story
	cp.Views = append([]uint(nil), story.Views...)
	r.stories[story.ID] = &cp
	return nil
}

func (r *StoryRepository) GetStoryByID(_ context.Context, id string) (*models.Story, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[objID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	cp.Views = append([]uint(nil), s.Views...)
	return &cp, nil
}

func (r *StoryRepository) GetStoriesByAuthors(_ context.Context, authorIDs []uint, since time.Time) ([]models.Story, error) {
	wanted := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		wanted[id] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Story{}
	for _, s := range r.stories {
		if wanted[s.AuthorID] && s.CreatedAt.After(since) {
			cp := *s
			cp.Views = append([]uint(nil), s.Views...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *StoryRepository) AddViewer(_ context.Context, storyID string, viewerID uint) error {
	objID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return repositories.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[objID]
	if !ok {
		return repositories.ErrNotFound
	}
	if !s.ViewedBy(viewerID) {
		s.Views = append(s.Views, viewerID)
	}
	return nil
}
