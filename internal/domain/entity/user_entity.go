package entity

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash; both single-use tokens hold sha256 digests.
// None of them are ever serialized to JSON.
type User struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email           string              `bson:"email" json:"email" binding:"required,email"`
	FirstName       string              `bson:"firstName" json:"firstName" binding:"required"`
	LastName        string              `bson:"lastName" json:"lastName" binding:"required"`
	Role            Role                `bson:"role" json:"role" binding:"omitempty,oneof=admin manager user"`
	CompanyID       *primitive.ObjectID `bson:"companyId,omitempty" json:"companyId,omitempty"`
	Department      string              `bson:"department,omitempty" json:"department,omitempty"`
	Position        string              `bson:"position,omitempty" json:"position,omitempty"`
	Phone           string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar          string              `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsActive        bool                `bson:"isActive" json:"isActive"`
	IsEmailVerified bool                `bson:"isEmailVerified" json:"isEmailVerified"`

	Password                 string     `bson:"password,omitempty" json:"-"`
	EmailVerificationToken   string     `bson:"emailVerificationToken,omitempty" json:"-"`
	EmailVerificationExpires *time.Time `bson:"emailVerificationExpires,omitempty" json:"-"`
	PasswordResetToken       string     `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires     *time.Time `bson:"passwordResetExpires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) HasPassword() bool { return u.Password != "" }

// NormalizeEmail is the case-folded form under which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TokenValid reports whether a stored single-use token is present and not yet expired.
func TokenValid(token string, expires *time.Time, now time.Time) bool {
	return token != "" && expires != nil && expires.After(now)
}

func (u *User) VerificationPending(now time.Time) bool {
	return TokenValid(u.EmailVerificationToken, u.EmailVerificationExpires, now)
}

func (u *User) ResetPending(now time.Time) bool {
	return TokenValid(u.PasswordResetToken, u.PasswordResetExpires, now)
}
