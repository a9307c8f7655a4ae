package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is the aggregate derived from a product's reviews.
type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Product is catalog reference data, shared and read-mostly.
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name            string             `bson:"name" json:"name"`
	Slug            string             `bson:"slug" json:"slug"`
	Description     string             `bson:"description" json:"description"`
	Price           float64            `bson:"price" json:"price"`
	MRPPrice        float64            `bson:"mrpPrice" json:"mrpPrice"`
	Stock           int                `bson:"stock" json:"stock"`
	Brand           string             `bson:"brand" json:"brand"`
	ThumbnailImage  string             `bson:"thumbnailImage" json:"thumbnailImage"`
	Images          []string           `bson:"images" json:"images"`
	Category        primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	Rating          Rating             `bson:"rating" json:"rating"`
	Views           int64              `bson:"views" json:"views"`
	PopularityScore float64            `bson:"popularityScore" json:"popularityScore"`
	Tags            []string           `bson:"tags" json:"tags"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	IsFeatured      bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
