package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types emitted by the matching engine.
const (
	NotifGroupFound    = "group_found"
	NotifMemberJoined  = "member_joined"
	NotifMemberLeft    = "member_left"
	NotifGroupComplete = "group_complete"
)

// Notification represents a user notification (MongoDB)
type Notification struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID         uint                   `bson:"user_id" json:"user_id"`
	Type           string                 `bson:"type" json:"type"`
	Title          string                 `bson:"title" json:"title"`
	Message        string                 `bson:"message" json:"message"`
	RelatedGroupID uint                   `bson:"related_group_id,omitempty" json:"related_group_id,omitempty"`
	RelatedRoomID  uint                   `bson:"related_room_id,omitempty" json:"related_room_id,omitempty"`
	Data           map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"` // opaque routing payload for the client
	IsRead         bool                   `bson:"is_read" json:"is_read"`
	CreatedAt      time.Time              `bson:"created_at" json:"created_at"`
}
