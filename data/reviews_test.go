package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/models"
	"urbancart/store"
)

func setupReviewTest(t *testing.T) (*store.MemoryDB, *ReviewStore, primitive.ObjectID) {
	t.Helper()
	db := newTestDB()
	reviews := NewReviewStore(db.Collection("reviews"), db.Collection("products"), db.Collection("users"))

	productID, err := db.Collection("products").InsertOne(context.Background(),
		&models.Product{Name: "Ceramic Mug", Slug: "ceramic-mug", Price: 299, IsActive: true})
	require.NoError(t, err)
	return db, reviews, productID
}

func TestReviewStore_RejectsOutOfRangeRating(t *testing.T) {
	_, reviews, productID := setupReviewTest(t)
	ctx := context.Background()

	_, err := reviews.Create(ctx, productID, primitive.NewObjectID(), 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = reviews.Create(ctx, productID, primitive.NewObjectID(), 6, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReviewStore_OneReviewPerUserPerProduct(t *testing.T) {
	db, reviews, productID := setupReviewTest(t)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := reviews.Create(ctx, productID, userID, 4, "solid")
	require.NoError(t, err)

	_, err = reviews.Create(ctx, productID, userID, 5, "changed my mind")
	assert.ErrorIs(t, err, ErrDuplicate)

	count, err := db.Collection("reviews").CountDocuments(ctx, bson.M{"product": productID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Same user, different product is fine.
	other, err := db.Collection("products").InsertOne(ctx,
		&models.Product{Name: "Other", Slug: "other", Price: 100})
	require.NoError(t, err)
	_, err = reviews.Create(ctx, other, userID, 3, "")
	assert.NoError(t, err)
}

func TestReviewStore_CreateRecomputesAggregate(t *testing.T) {
	db, reviews, productID := setupReviewTest(t)
	ctx := context.Background()

	for _, rating := range []int{4, 5, 3} {
		_, err := reviews.Create(ctx, productID, primitive.NewObjectID(), rating, "")
		require.NoError(t, err)
	}

	var product models.Product
	require.NoError(t, db.Collection("products").FindOne(ctx, bson.M{"_id": productID}, &product))
	assert.Equal(t, 4.0, product.Rating.Average)
	assert.Equal(t, 3, product.Rating.Count)
}

func TestReviewStore_RecomputeSkipsWithNoReviews(t *testing.T) {
	db, reviews, _ := setupReviewTest(t)
	ctx := context.Background()

	productID, err := db.Collection("products").InsertOne(ctx, &models.Product{
		Name:   "Preloaded",
		Slug:   "preloaded",
		Rating: models.Rating{Average: 2.5, Count: 2},
	})
	require.NoError(t, err)

	require.NoError(t, reviews.RecomputeProductRating(ctx, productID))

	var product models.Product
	require.NoError(t, db.Collection("products").FindOne(ctx, bson.M{"_id": productID}, &product))
	assert.Equal(t, 2.5, product.Rating.Average, "prior aggregate must stand")
	assert.Equal(t, 2, product.Rating.Count)
}

func TestReviewStore_ListPopulatesAuthor(t *testing.T) {
	db, reviews, productID := setupReviewTest(t)
	ctx := context.Background()

	userID, err := db.Collection("users").InsertOne(ctx, &models.User{
		Name:  "Ravi Kumar",
		Email: "ravi@example.com",
	})
	require.NoError(t, err)
	_, err = reviews.Create(ctx, productID, userID, 5, "excellent")
	require.NoError(t, err)

	// Review by a deleted user keeps the raw id.
	ghost := primitive.NewObjectID()
	_, err = reviews.Create(ctx, productID, ghost, 2, "meh")
	require.NoError(t, err)

	listed, err := reviews.ListForProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byComment := make(map[string]models.PopulatedReview)
	for _, r := range listed {
		byComment[r.Comment] = r
	}
	author, ok := byComment["excellent"].User.(models.ReviewAuthor)
	require.True(t, ok, "expected populated author, got %T", byComment["excellent"].User)
	assert.Equal(t, "Ravi Kumar", author.Name)
	assert.Equal(t, userID, author.ID)

	raw, ok := byComment["meh"].User.(primitive.ObjectID)
	require.True(t, ok)
	assert.Equal(t, ghost, raw)
}
