package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a single line in a cart. Item ids are assigned when the item
// is first appended so that later update/remove calls can address it.
type CartItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// Cart represents a user's shopping cart. One per user. Version backs the
// conditional update on every cart mutation.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	Version   int64              `bson:"version" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PopulatedCartItem carries the full product record in place of the raw
// reference. Product is either a *Product or, when the referenced product
// no longer exists, the original ObjectID.
type PopulatedCartItem struct {
	ID       primitive.ObjectID `json:"_id"`
	Product  interface{}        `json:"product"`
	Quantity int                `json:"quantity"`
}

// PopulatedCart is the response shape for cart reads.
type PopulatedCart struct {
	ID        primitive.ObjectID  `json:"_id"`
	User      primitive.ObjectID  `json:"user"`
	Items     []PopulatedCartItem `json:"items"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
