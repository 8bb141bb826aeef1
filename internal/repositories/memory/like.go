package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
)

type likeKey struct {
	user   uint
	kind   models.TargetKind
	target string
}

// LikeRepository is an in-memory repositories.LikeRepository.
type LikeRepository struct {
	mu     sync.Mutex
	nextID uint
	likes  map[likeKey]models.Like
}

func NewLikeRepository() *LikeRepository {
	return &LikeRepository{likes: make(map[likeKey]models.Like)}
}

var _ repositories.LikeRepository = (*LikeRepository)(nil)

func (r *LikeRepository) CreateLike(_ context.Context, like *models.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{like.UserID, like.TargetType, like.TargetID}
	if _, ok := r.likes[k]; ok {
		return repositories.ErrDuplicate
	}
	r.nextID++
	like.ID = r.nextID
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now()
	}
	r.likes[k] = *like
	return nil
}

func (r *LikeRepository) DeleteLike(_ context.Context, userID uint, kind models.TargetKind, targetID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{userID, kind, targetID}
	if _, ok := r.likes[k]; !ok {
		return false, nil
	}
	delete(r.likes, k)
	return true, nil
}

func (r *LikeRepository) HasUserLiked(_ context.Context, userID uint, kind models.TargetKind, targetID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.likes[likeKey{userID, kind, targetID}]
	return ok, nil
}

func (r *LikeRepository) GetLikesCount(_ context.Context, kind models.TargetKind, targetID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.likes {
		if k.kind == kind && k.target == targetID {
			n++
		}
	}
	return n, nil
}
