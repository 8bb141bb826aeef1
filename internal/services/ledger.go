package services

import (
	"context"
	"errors"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/events"
	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// NewNotification is the input to NotificationLedger.Record.
type NewNotification struct {
	Kind      models.NotificationType
	Owner     uint
	FromUser  uint
	PostID    *string
	CommentID *string
	Message   string
}

// Page is one page of an owner's notifications.
type Page struct {
	Items       []models.Notification `json:"notifications"`
	Total       int64                 `json:"total"`
	UnreadCount int64                 `json:"unread_count"`
	HasMore     bool                  `json:"has_more"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"limit"`
}

// NotificationLedger owns notification records and their read state.
// Every mutation emits a domain event; the ledger never talks to connections.
type NotificationLedger struct {
	repo      repositories.NotificationRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
}

func NewNotificationLedger(repo repositories.NotificationRepository, publisher events.Publisher, m *metrics.Metrics, logger logrus.FieldLogger) *NotificationLedger {
	return &NotificationLedger{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithField("component", "ledger"),
	}
}

// Record stores an unread notification and returns its id.
func (l *NotificationLedger) Record(ctx context.Context, n NewNotification) (uint, error) {
	if !n.Kind.Valid() {
		return 0, apperr.Validation("unknown notification type")
	}
	if n.Owner == 0 || n.FromUser == 0 {
		return 0, apperr.Validation("notification owner and actor are required")
	}

	notification := &models.Notification{
		Type:        n.Kind,
		ActorID:     n.FromUser,
		RecipientID: n.Owner,
		PostID:      n.PostID,
		CommentID:   n.CommentID,
		Message:     n.Message,
	}
	if err := l.repo.CreateNotification(ctx, notification); err != nil {
		return 0, apperr.Internal(err)
	}
	l.metrics.NotificationsRecorded.WithLabelValues(string(n.Kind)).Inc()

	unread := l.countOrLog(ctx, n.Owner)
	l.publish(ctx, events.NotificationCreated{Notification: *notification, UnreadCount: unread})
	return notification.ID, nil
}

// List returns a page of owner's notifications, newest first.
// page < 1 becomes 1; pageSize < 1 becomes DefaultPageSize and is capped at MaxPageSize.
func (l *NotificationLedger) List(ctx context.Context, owner uint, page, pageSize int, filter models.NotificationFilter) (*Page, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, apperr.Validation("unknown notification type")
	}
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	offset := (page - 1) * pageSize

	items, total, err := l.repo.ListByRecipient(ctx, owner, filter, offset, pageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	unread, err := l.repo.GetUnreadCount(ctx, owner)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Page{
		Items:       items,
		Total:       total,
		UnreadCount: unread,
		HasMore:     total > int64(offset+len(items)),
		Page:        page,
		PageSize:    pageSize,
	}, nil
}

// MarkRead marks one notification read and returns the owner's unread count.
// Marking an already-read notification succeeds without a state change.
func (l *NotificationLedger) MarkRead(ctx context.Context, id, requester uint) (int64, error) {
	if _, err := l.owned(ctx, id, requester); err != nil {
		return 0, err
	}
	if _, err := l.repo.MarkAsRead(ctx, id); err != nil {
		return 0, apperr.Internal(err)
	}
	unread, err := l.repo.GetUnreadCount(ctx, requester)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	l.publish(ctx, events.NotificationRead{Owner: requester, NotificationID: id, UnreadCount: unread})
	return unread, nil
}

// MarkAllRead marks every unread notification of owner read and returns how many changed.
func (l *NotificationLedger) MarkAllRead(ctx context.Context, owner uint) (int64, error) {
	changed, err := l.repo.MarkAllAsRead(ctx, owner)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	l.publish(ctx, events.AllNotificationsRead{Owner: owner})
	return changed, nil
}

func (l *NotificationLedger) UnreadCount(ctx context.Context, owner uint) (int64, error) {
	count, err := l.repo.GetUnreadCount(ctx, owner)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}

// ReportUnreadCount is UnreadCount for live clients: the answer is also
// pushed to every connection of owner.
func (l *NotificationLedger) ReportUnreadCount(ctx context.Context, owner uint) (int64, error) {
	count, err := l.UnreadCount(ctx, owner)
	if err != nil {
		return 0, err
	}
	l.publish(ctx, events.UnreadCountReported{Owner: owner, Count: count})
	return count, nil
}

// Delete removes one notification and returns the owner's unread count.
func (l *NotificationLedger) Delete(ctx context.Context, id, requester uint) (int64, error) {
	if _, err := l.owned(ctx, id, requester); err != nil {
		return 0, err
	}
	removed, err := l.repo.DeleteNotification(ctx, id)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if !removed {
		return 0, apperr.NotFound("notification")
	}
	unread, err := l.repo.GetUnreadCount(ctx, requester)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	l.publish(ctx, events.NotificationDeleted{Owner: requester, NotificationID: id, UnreadCount: unread})
	return unread, nil
}

func (l *NotificationLedger) owned(ctx context.Context, id, requester uint) (*models.Notification, error) {
	if id == 0 {
		return nil, apperr.Validation("notification id is required")
	}
	n, err := l.repo.GetNotificationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("notification")
		}
		return nil, apperr.Internal(err)
	}
	if n.RecipientID != requester {
		return nil, apperr.Forbidden("notification belongs to another user")
	}
	return n, nil
}

func (l *NotificationLedger) countOrLog(ctx context.Context, owner uint) int64 {
	count, err := l.repo.GetUnreadCount(ctx, owner)
	if err != nil {
		l.logger.WithError(err).WithField("user_id", owner).Error("failed to count unread notifications")
	}
	return count
}

// publish is best effort: the mutation already happened, so a bus failure is logged only.
func (l *NotificationLedger) publish(ctx context.Context, e events.Event) {
	if err := l.publisher.Publish(ctx, e); err != nil {
		l.logger.WithError(err).WithField("event", e.Kind()).Error("failed to publish domain event")
	}
}
