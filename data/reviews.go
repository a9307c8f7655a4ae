package data

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/models"
	"urbancart/store"
)

// ReviewStore creates reviews and maintains each product's aggregate rating.
type ReviewStore struct {
	reviews  store.Collection
	products store.Collection
	users    store.Collection
}

// NewReviewStore creates a ReviewStore.
func NewReviewStore(reviews, products, users store.Collection) *ReviewStore {
	return &ReviewStore{reviews: reviews, products: products, users: users}
}

// Create persists a review. Uniqueness per (product, user) is enforced by
// the store-level index; a second review surfaces ErrDuplicate. Each created
// review triggers a recompute of the product's aggregate rating.
func (s *ReviewStore) Create(ctx context.Context, productID, userID primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrInvalidInput)
	}
	review := models.Review{
		Product:   productID,
		User:      userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.reviews.InsertOne(ctx, review)
	if store.IsDuplicateKey(err) {
		return nil, fmt.Errorf("review for product %s by user %s: %w",
			productID.Hex(), userID.Hex(), ErrDuplicate)
	}
	if err != nil {
		return nil, err
	}
	review.ID = id

	// The review is already persisted; a failed recompute leaves a stale
	// aggregate that the next recompute repairs.
	if err := s.RecomputeProductRating(ctx, productID); err != nil {
		log.Warn().Err(err).Str("product", productID.Hex()).
			Msg("product rating not recomputed")
	}
	return &review, nil
}

// RecomputeProductRating recalculates the arithmetic-mean rating and count
// from every review of the product and writes them onto the product record.
// With zero reviews the write is skipped and the prior aggregate stands.
func (s *ReviewStore) RecomputeProductRating(ctx context.Context, productID primitive.ObjectID) error {
	var reviews []models.Review
	if err := s.reviews.Find(ctx, bson.M{"product": productID}, nil, &reviews); err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}

	var sum float64
	for _, review := range reviews {
		sum += float64(review.Rating)
	}
	rating := models.Rating{
		Average: sum / float64(len(reviews)),
		Count:   len(reviews),
	}
	_, err := s.products.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"rating": rating}})
	return err
}

// ListForProduct returns the product's reviews, newest first, with each
// review's user reduced to id and name only.
func (s *ReviewStore) ListForProduct(ctx context.Context, productID primitive.ObjectID) ([]models.PopulatedReview, error) {
	var reviews []models.Review
	err := s.reviews.Find(ctx, bson.M{"product": productID},
		&store.FindOptions{Sort: bson.D{{Key: "createdAt", Value: -1}}}, &reviews)
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, review := range reviews {
		if _, ok := seen[review.User]; ok {
			continue
		}
		seen[review.User] = struct{}{}
		ids = append(ids, review.User)
	}

	authors := make(map[primitive.ObjectID]models.ReviewAuthor)
	if len(ids) > 0 {
		var users []models.User
		if err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil, &users); err != nil {
			return nil, err
		}
		for _, user := range users {
			authors[user.ID] = models.ReviewAuthor{ID: user.ID, Name: user.Name}
		}
	}

	out := make([]models.PopulatedReview, 0, len(reviews))
	for _, review := range reviews {
		pr := models.PopulatedReview{
			ID:        review.ID,
			Product:   review.Product,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
		}
		if author, ok := authors[review.User]; ok {
			pr.User = author
		} else {
			pr.User = review.User
		}
		out = append(out, pr)
	}
	return out, nil
}
