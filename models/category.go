package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category is a catalog category. Root categories have no parent.
type Category struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"_id,omitempty"`
	Name     string              `bson:"name" json:"name"`
	Slug     string              `bson:"slug" json:"slug"`
	Image    string              `bson:"image,omitempty" json:"image,omitempty"`
	Parent   *primitive.ObjectID `bson:"parent" json:"parent"`
	IsActive bool                `bson:"isActive" json:"isActive"`
}

// CategorySummary is the reduced category shape embedded in grouped
// product listings.
type CategorySummary struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
	Slug string             `json:"slug"`
}

// CategoryWithChildren is a category plus its active subcategories.
type CategoryWithChildren struct {
	Category
	Subcategories []Category `json:"subcategories"`
}
