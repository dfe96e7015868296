package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshToken is one login session. Token holds the sha256 digest of the
// value handed to the client.
type RefreshToken struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Token      string             `bson:"token" json:"-"`
	ExpiresAt  time.Time          `bson:"expiresAt" json:"expiresAt"`
	IsRevoked  bool               `bson:"isRevoked" json:"isRevoked"`
	DeviceInfo string             `bson:"deviceInfo,omitempty" json:"deviceInfo,omitempty"`
	RememberMe bool               `bson:"rememberMe" json:"rememberMe"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsValid reports whether the token can still be exchanged for an access token.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.IsRevoked && t.ExpiresAt.After(now)
}
