package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is an organizational container for listings, hosted at a venue.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Media       string             `bson:"media,omitempty" json:"media,omitempty"`
	Banner      string             `bson:"banner,omitempty" json:"banner,omitempty"`

	StartDate time.Time `bson:"startDate" json:"startDate"`
	EndDate   time.Time `bson:"endDate" json:"endDate"`

	Tags []string `bson:"tags,omitempty" json:"tags,omitempty"`

	VenueID *primitive.ObjectID `bson:"venue,omitempty" json:"venueId,omitempty"`
	OwnerID primitive.ObjectID  `bson:"owner" json:"ownerId"`

	IsFeatured bool      `bson:"isFeatured" json:"isFeatured"`
	IsActive   bool      `bson:"isActive" json:"isActive"`
	IsCensored bool      `bson:"isCensored" json:"isCensored"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
