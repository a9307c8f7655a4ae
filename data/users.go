package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"urbancart/models"
	"urbancart/store"
)

// UserStore manages accounts, profiles, and wishlists.
type UserStore struct {
	users store.Collection
}

// NewUserStore creates a UserStore.
func NewUserStore(users store.Collection) *UserStore {
	return &UserStore{users: users}
}

// ProfileUpdate carries the profile fields a user may change. Empty fields
// are left untouched.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Register creates a user with a bcrypt-hashed password. A taken email
// yields ErrDuplicate.
func (s *UserStore) Register(ctx context.Context, name, email, password, phone string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("name, email, and password are required: %w", ErrInvalidInput)
	}
	count, err := s.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("email %s already registered: %w", email, ErrDuplicate)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		Phone:     phone,
		Role:      "user",
		Wishlist:  []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.users.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}

// Authenticate checks the credentials and returns the user. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}, &user)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, fmt.Errorf("credentials: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, fmt.Errorf("credentials: %w", ErrNotFound)
	}
	return &user, nil
}

// ByID fetches a user by id.
func (s *UserStore) ByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": userID}, &user)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches the non-empty fields of the update onto the user and
// returns the result.
func (s *UserStore) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	set := bson.M{}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.Email != "" {
		set["email"] = update.Email
	}
	if update.Phone != "" {
		set["phone"] = update.Phone
	}
	if len(set) > 0 {
		matched, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
		if err != nil {
			return nil, err
		}
		if matched == 0 {
			return nil, fmt.Errorf("user %s: %w", userID.Hex(), ErrNotFound)
		}
	}
	return s.ByID(ctx, userID)
}

// Wishlist returns the user's wishlist product ids.
func (s *UserStore) Wishlist(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Wishlist == nil {
		return []primitive.ObjectID{}, nil
	}
	return user.Wishlist, nil
}

// AddToWishlist appends a product to the wishlist unless already present.
// Idempotent.
func (s *UserStore) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "wishlist": bson.M{"$ne": productID}},
		bson.M{"$push": bson.M{"wishlist": productID}})
	return err
}

// RemoveFromWishlist drops a product from the wishlist. Idempotent.
func (s *UserStore) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"wishlist": productID}})
	return err
}
