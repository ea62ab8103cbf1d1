package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Venue is an organizational container owned by a whitelisted user.
type Venue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Media       string             `bson:"media,omitempty" json:"media,omitempty"`

	Location *Location `bson:"location,omitempty" json:"location,omitempty"`

	OwnerID primitive.ObjectID `bson:"owner" json:"ownerId"`

	IsActive   bool      `bson:"isActive" json:"isActive"`
	IsCensored bool      `bson:"isCensored" json:"isCensored"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
