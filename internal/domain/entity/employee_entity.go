package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Employee is an internal staff record, independent of companies.
type Employee struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID string             `bson:"employeeId,omitempty" json:"employeeId,omitempty"`
	FirstName  string             `bson:"firstName" json:"firstName" binding:"required"`
	LastName   string             `bson:"lastName" json:"lastName" binding:"required"`
	Email      string             `bson:"email" json:"email" binding:"required,email"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	Position   string             `bson:"position,omitempty" json:"position,omitempty"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
