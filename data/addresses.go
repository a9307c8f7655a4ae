package data

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/models"
	"urbancart/store"
)

// AddressStore manages a user's saved delivery addresses.
type AddressStore struct {
	addresses store.Collection
}

// NewAddressStore creates an AddressStore.
func NewAddressStore(addresses store.Collection) *AddressStore {
	return &AddressStore{addresses: addresses}
}

// ListForUser returns every address the user has saved.
func (s *AddressStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	var addresses []models.Address
	err := s.addresses.Find(ctx, bson.M{"user": userID}, nil, &addresses)
	if err != nil {
		return nil, err
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	return addresses, nil
}

// Create saves a new address for the user.
func (s *AddressStore) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	if address.FullName == "" || address.Line1 == "" {
		return nil, fmt.Errorf("fullName and line1 are required: %w", ErrInvalidInput)
	}
	address.CreatedAt = time.Now().UTC()
	id, err := s.addresses.InsertOne(ctx, address)
	if err != nil {
		return nil, err
	}
	address.ID = id
	return address, nil
}
