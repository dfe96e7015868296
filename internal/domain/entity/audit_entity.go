package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog records one authentication event.
type AuditLog struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Email     string              `bson:"email,omitempty" json:"email,omitempty"`
	Action    string              `bson:"action" json:"action"`
	IP        string              `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string              `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Metadata  map[string]any      `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
