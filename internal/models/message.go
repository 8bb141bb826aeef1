package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message between two users (MongoDB).
type Message struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	SenderID   uint               `json:"sender" bson:"sender_id"`
	ReceiverID uint               `json:"receiver" bson:"receiver_id"`
	Content    string             `json:"content" bson:"content"`
	CreatedAt  time.Time          `json:"timestamp" bson:"created_at"`
}
