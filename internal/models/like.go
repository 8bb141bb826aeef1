package models

import "time"

// TargetKind is the kind of entity a like points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Valid reports whether k is a known target kind.
func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

// Like represents a like on a post or a comment.
// Unique per (user_id, target_type, target_id).
type Like struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"user_id" gorm:"index;uniqueIndex:idx_user_target_like"`
	TargetType TargetKind `json:"target_type" gorm:"size:20;uniqueIndex:idx_user_target_like"`
	TargetID   string     `json:"target_id" gorm:"size:64;index;uniqueIndex:idx_user_target_like"`
	CreatedAt  time.Time  `json:"created_at"`
}
