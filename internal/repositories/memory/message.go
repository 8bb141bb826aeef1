package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageRepository is an in-memory repositories.MessageRepository.
type MessageRepository struct {
	mu       sync.Mutex
	messages []models.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

var _ repositories.MessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) CreateMessage(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages = append(r.messages, *msg)
	return nil
}

// Messages returns a copy of every stored message.
func (r *MessageRepository) Messages() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Message(nil), r.messages...)
}
