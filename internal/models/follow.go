package models

import "time"

// Follow represents an Instagram-style follow relationship.
// The (follower_id, following_id) pair is unique and a user can never follow themselves.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following;check:chk_follow_not_self,follower_id <> following_id"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}
