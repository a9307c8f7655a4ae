package data

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/models"
	"urbancart/store"
)

// CategoryStore reads catalog categories.
type CategoryStore struct {
	categories store.Collection
}

// NewCategoryStore creates a CategoryStore.
func NewCategoryStore(categories store.Collection) *CategoryStore {
	return &CategoryStore{categories: categories}
}

// Roots returns the active top-level categories.
func (s *CategoryStore) Roots(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.categories.Find(ctx, bson.M{"isActive": true, "parent": nil}, nil, &categories)
	return categories, err
}

// BySlug fetches an active category with its active subcategories.
func (s *CategoryStore) BySlug(ctx context.Context, slug string) (*models.CategoryWithChildren, error) {
	var category models.Category
	err := s.categories.FindOne(ctx, bson.M{"slug": slug, "isActive": true}, &category)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	subcategories, err := s.Subcategories(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	return &models.CategoryWithChildren{Category: category, Subcategories: subcategories}, nil
}

// Subcategories returns the active children of a category.
func (s *CategoryStore) Subcategories(ctx context.Context, parentID primitive.ObjectID) ([]models.Category, error) {
	var categories []models.Category
	err := s.categories.Find(ctx, bson.M{"parent": parentID, "isActive": true}, nil, &categories)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}
