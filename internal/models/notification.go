package models

import "time"

// NotificationType is the kind of interaction a notification reports.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationMessage NotificationType = "message"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow, NotificationMessage:
		return true
	}
	return false
}

// Notification represents a user notification (PostgreSQL).
// IsRead only ever moves from false to true.
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Type        NotificationType `json:"type" gorm:"size:30;index"`
	ActorID     uint             `json:"actor_id" gorm:"index"`
	RecipientID uint             `json:"recipient_id" gorm:"index:idx_recipient_read"`
	PostID      *string          `json:"post_id,omitempty" gorm:"size:64"`
	CommentID   *string          `json:"comment_id,omitempty" gorm:"size:64"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index:idx_recipient_read"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}

// NotificationFilter narrows a notification listing.
type NotificationFilter struct {
	Type       NotificationType
	UnreadOnly bool
}
