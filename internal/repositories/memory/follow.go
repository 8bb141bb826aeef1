package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
)

type followKey struct{ follower, following uint }

// FollowRepository is an in-memory repositories.FollowRepository.
type FollowRepository struct {
	mu     sync.Mutex
	nextID uint
	edges  map[followKey]models.Follow
}

func NewFollowRepository() *FollowRepository {
	return &FollowRepository{edges: make(map[followKey]models.Follow)}
}

var _ repositories.FollowRepository = (*FollowRepository)(nil)

func (r *FollowRepository) CreateFollow(_ context.Context, follow *models.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := followKey{follow.FollowerID, follow.FollowingID}
	if _, ok := r.edges[k]; ok {
		return repositories.ErrDuplicate
	}
	r.nextID++
	follow.ID = r.nextID
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}
	r.edges[k] = *follow
	return nil
}

func (r *FollowRepository) DeleteFollow(_ context.Context, followerID, followingID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := followKey{followerID, followingID}
	if _, ok := r.edges[k]; !ok {
		return false, nil
	}
	delete(r.edges, k)
	return true, nil
}

func (r *FollowRepository) IsFollowing(_ context.Context, followerID, followingID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.edges[followKey{followerID, followingID}]
	return ok, nil
}

func (r *FollowRepository) GetFollowers(_ context.Context, userID uint) ([]models.Follow, error) {
	return r.collect(func(f models.Follow) bool { return f.FollowingID == userID }), nil
}

func (r *FollowRepository) GetFollowing(_ context.Context, userID uint) ([]models.Follow, error) {
	return r.collect(func(f models.Follow) bool { return f.FollowerID == userID }), nil
}

func (r *FollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	following, _ := r.GetFollowing(ctx, userID)
	ids := make([]uint, 0, len(following))
	for _, f := range following {
		ids = append(ids, f.FollowingID)
	}
	return ids, nil
}

// Count returns the number of stored edges.
func (r *FollowRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.edges)
}

func (r *FollowRepository) collect(match func(models.Follow) bool) []models.Follow {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Follow{}
	for _, f := range r.edges {
		if match(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
