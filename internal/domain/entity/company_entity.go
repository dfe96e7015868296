package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
}

// Company owns users through User.CompanyID.
type Company struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" binding:"required"`
	Email     string             `bson:"email" json:"email" binding:"required,email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   *Address           `bson:"address,omitempty" json:"address,omitempty"`
	Website   string             `bson:"website,omitempty" json:"website,omitempty"`
	Industry  string             `bson:"industry,omitempty" json:"industry,omitempty"`
	Size      string             `bson:"size" json:"size" binding:"required,companysize"`
	Logo      string             `bson:"logo,omitempty" json:"logo,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const DefaultCompanySize = "1-10"
