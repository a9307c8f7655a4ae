package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a user's review of a product. At most one per (product, user),
// enforced by a unique index on the reviews collection.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Product   primitive.ObjectID `bson:"product" json:"product"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ReviewAuthor is the only slice of the user record exposed on review listings.
type ReviewAuthor struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

// PopulatedReview carries the author's id and name in place of the raw user
// reference, falling back to the ObjectID when the user is gone.
type PopulatedReview struct {
	ID        primitive.ObjectID `json:"_id"`
	Product   primitive.ObjectID `json:"product"`
	User      interface{}        `json:"user"`
	Rating    int                `json:"rating"`
	Comment   string             `json:"comment"`
	CreatedAt time.Time          `json:"createdAt"`
}
