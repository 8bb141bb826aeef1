package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
)

// NotificationRepository is an in-memory repositories.NotificationRepository.
type NotificationRepository struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]models.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{byID: make(map[uint]models.Notification)}
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.byID[n.ID] = *n
	return nil
}

func (r *NotificationRepository) GetNotificationByID(_ context.Context, id uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &n, nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID uint, filter models.NotificationFilter, offset, limit int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.Notification{}
	for _, n := range r.byID {
		if n.RecipientID != recipientID {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Notification{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *NotificationRepository) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.byID {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok || n.IsRead {
		return false, nil
	}
	n.IsRead = true
	r.byID[id] = n
	return true, nil
}

func (r *NotificationRepository) MarkAllAsRead(_ context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for id, n := range r.byID {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			r.byID[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r *NotificationRepository) DeleteNotification(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}
