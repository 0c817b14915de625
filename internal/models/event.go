package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is an immutable system-originated message considered for delivery as
// a notification. Key is a hierarchical dot-separated identifier, e.g.
// "membership.changed" or "user.created".
type Event struct {
	Key         string     `json:"key" validate:"required"`
	RecipientID uint       `json:"recipient_id" validate:"required"`
	Icon        string     `json:"icon" validate:"required,max=100"`
	Title       string     `json:"title" validate:"required,max=200"`
	Message     string     `json:"message" validate:"required"`
	Expires     *time.Time `json:"expires,omitempty"`
}

// EventLogEntry records a single delivery-authorization decision (MongoDB)
type EventLogEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key         string             `bson:"key" json:"key"`
	RecipientID uint               `bson:"recipient_id" json:"recipient_id"`
	Channel     string             `bson:"channel" json:"channel"`
	Authorized  bool               `bson:"authorized" json:"authorized"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
