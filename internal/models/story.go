package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryLifetime is how long a story stays visible in feeds.
const StoryLifetime = 24 * time.Hour

// Story represents a user's story stored in MongoDB.
// Views is an add-only set of viewer ids.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	MediaURL  string             `json:"media_url" bson:"media_url"`
	MediaType string             `json:"media_type" bson:"media_type"` // "image" or "video"
	Caption   string             `json:"caption,omitempty" bson:"caption,omitempty"`
	Views     []uint             `json:"-" bson:"views"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}

// ViewedBy reports whether userID is in the story's view set.
func (s *Story) ViewedBy(userID uint) bool {
	for _, v := range s.Views {
		if v == userID {
			return true
		}
	}
	return false
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	MediaURL  string `json:"media_url" validate:"required,url"`
	MediaType string `json:"media_type" validate:"required,oneof=image video"`
	Caption   string `json:"caption" validate:"max=2200"`
}
