package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbancart/models"
)

func TestCategoryStore_RootsExcludeChildrenAndInactive(t *testing.T) {
	db := newTestDB()
	categories := NewCategoryStore(db.Collection("categories"))
	ctx := context.Background()

	root := seedCategory(t, db, models.Category{Name: "Home", Slug: "home", IsActive: true})
	seedCategory(t, db, models.Category{Name: "Kitchen", Slug: "kitchen", Parent: &root.ID, IsActive: true})
	seedCategory(t, db, models.Category{Name: "Retired", Slug: "retired", IsActive: false})

	roots, err := categories.Roots(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Home", roots[0].Name)
}

func TestCategoryStore_BySlugIncludesSubcategories(t *testing.T) {
	db := newTestDB()
	categories := NewCategoryStore(db.Collection("categories"))
	ctx := context.Background()

	root := seedCategory(t, db, models.Category{Name: "Home", Slug: "home", IsActive: true})
	kitchen := seedCategory(t, db, models.Category{Name: "Kitchen", Slug: "kitchen", Parent: &root.ID, IsActive: true})
	seedCategory(t, db, models.Category{Name: "Hidden", Slug: "hidden", Parent: &root.ID, IsActive: false})

	got, err := categories.BySlug(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	require.Len(t, got.Subcategories, 1)
	assert.Equal(t, kitchen.ID, got.Subcategories[0].ID)

	// Leaf categories come back with an empty, non-nil child list.
	leaf, err := categories.BySlug(ctx, "kitchen")
	require.NoError(t, err)
	assert.NotNil(t, leaf.Subcategories)
	assert.Empty(t, leaf.Subcategories)

	_, err = categories.BySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
