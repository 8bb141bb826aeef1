package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is an in-memory repositories.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uint]models.User
}

func NewUserRepository(users ...models.User) *UserRepository {
	r := &UserRepository{users: make(map[uint]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// Add stores or replaces a user.
func (r *UserRepository) Add(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *UserRepository) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepository) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.FirebaseUID != "" && u.FirebaseUID == firebaseUID {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// PostRepository is an in-memory repositories.PostRepository.
type PostRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]models.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[primitive.ObjectID]models.Post)}
}

var _ repositories.PostRepository = (*PostRepository)(nil)

// Add stores a post, assigning an id when it has none, and returns its hex id.
func (r *PostRepository) Add(p models.Post) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.posts[p.ID] = p
	return p.ID.Hex()
}

func (r *PostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[objID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

// CommentRepository is an in-memory repositories.CommentRepository.
type CommentRepository struct {
	mu       sync.RWMutex
	nextID   uint
	comments map[uint]models.Comment
}

func NewCommentRepository(comments ...models.Comment) *CommentRepository {
	r := &CommentRepository{comments: make(map[uint]models.Comment)}
	for _, c := range comments {
		r.comments[c.ID] = c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)

// Add stores a comment under its own ID. Later CreateComment calls continue after the highest ID.
func (r *CommentRepository) Add(c models.Comment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[c.ID] = c
	if c.ID > r.nextID {
		r.nextID = c.ID
	}
}

func (r *CommentRepository) CreateComment(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.comments[c.ID] = *c
	return nil
}

func (r *CommentRepository) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}
