package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/models"
	"urbancart/store"
)

// cartRetries bounds the optimistic-concurrency retry loop on cart mutations.
const cartRetries = 3

// CartStore owns per-user cart state: the item list, quantity merging, and
// product population for display.
type CartStore struct {
	carts    store.Collection
	products store.Collection
}

// NewCartStore creates a CartStore over the carts and products collections.
func NewCartStore(carts, products store.Collection) *CartStore {
	return &CartStore{carts: carts, products: products}
}

// Get fetches the user's cart, creating an empty one if none exists yet.
// Line items are returned with their product records populated.
func (s *CartStore) Get(ctx context.Context, userID primitive.ObjectID) (*models.PopulatedCart, error) {
	cart, err := s.findByUser(ctx, userID)
	if errors.Is(err, store.ErrNoDocument) {
		cart, err = s.createForUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// AddItem merges quantity into an existing line for the product or appends a
// new line, creating the cart lazily on first use.
func (s *CartStore) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.PopulatedCart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	if _, err := s.findByUser(ctx, userID); errors.Is(err, store.ErrNoDocument) {
		if _, err := s.createForUser(ctx, userID); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	cart, err := s.mutate(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].Product == productID {
				c.Items[i].Quantity += quantity
				return nil
			}
		}
		c.Items = append(c.Items, models.CartItem{
			ID:       primitive.NewObjectID(),
			Product:  productID,
			Quantity: quantity,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// UpdateItem overwrites the quantity of the line item with the given id.
// Missing cart or item yields ErrNotFound; non-positive quantities are
// rejected rather than persisted.
func (s *CartStore) UpdateItem(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (*models.PopulatedCart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	cart, err := s.mutate(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
				return nil
			}
		}
		return fmt.Errorf("cart item %s: %w", itemID.Hex(), ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// RemoveItem deletes the line item with the given id. Missing cart or item
// yields ErrNotFound; removing the last item leaves an empty cart.
func (s *CartStore) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (*models.PopulatedCart, error) {
	cart, err := s.mutate(ctx, userID, func(c *models.Cart) error {
		kept := c.Items[:0]
		removed := false
		for _, item := range c.Items {
			if item.ID == itemID {
				removed = true
				continue
			}
			kept = append(kept, item)
		}
		if !removed {
			return fmt.Errorf("cart item %s: %w", itemID.Hex(), ErrNotFound)
		}
		c.Items = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// Clear unconditionally empties the user's cart. Idempotent; a missing cart
// is a silent no-op.
func (s *CartStore) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.carts.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{
			"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now().UTC()},
			"$inc": bson.M{"version": 1},
		})
	return err
}

func (s *CartStore) findByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := s.carts.FindOne(ctx, bson.M{"user": userID}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartStore) createForUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	now := time.Now().UTC()
	cart := models.Cart{
		User:      userID,
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.carts.InsertOne(ctx, cart)
	if store.IsDuplicateKey(err) {
		// Another request created the cart first; use theirs.
		return s.findByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	cart.ID = id
	return &cart, nil
}

// mutate runs a read-modify-write on the user's cart, conditioning the write
// on the version read at load time. On a version miss the whole cycle is
// retried; exhausting the retries surfaces ErrConflict.
func (s *CartStore) mutate(ctx context.Context, userID primitive.ObjectID, fn func(*models.Cart) error) (*models.Cart, error) {
	for attempt := 0; attempt < cartRetries; attempt++ {
		cart, err := s.findByUser(ctx, userID)
		if errors.Is(err, store.ErrNoDocument) {
			return nil, fmt.Errorf("cart for user %s: %w", userID.Hex(), ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if err := fn(cart); err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		matched, err := s.carts.UpdateOne(ctx,
			bson.M{"_id": cart.ID, "version": cart.Version},
			bson.M{
				"$set": bson.M{"items": cart.Items, "updatedAt": now},
				"$inc": bson.M{"version": 1},
			})
		if err != nil {
			return nil, err
		}
		if matched > 0 {
			cart.Version++
			cart.UpdatedAt = now
			return cart, nil
		}
	}
	return nil, fmt.Errorf("cart for user %s: %w", userID.Hex(), ErrConflict)
}

// populate replaces each item's product reference with the full product
// record, fetched in one batched lookup. Items whose product no longer
// exists keep the raw reference instead of failing the read.
func (s *CartStore) populate(ctx context.Context, cart *models.Cart) (*models.PopulatedCart, error) {
	out := &models.PopulatedCart{
		ID:        cart.ID,
		User:      cart.User,
		Items:     make([]models.PopulatedCartItem, 0, len(cart.Items)),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	if len(cart.Items) == 0 {
		return out, nil
	}

	ids := distinctProductIDs(cart.Items)
	byID, err := fetchProducts(ctx, s.products, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range cart.Items {
		pi := models.PopulatedCartItem{ID: item.ID, Quantity: item.Quantity}
		if p, ok := byID[item.Product]; ok {
			pi.Product = p
		} else {
			pi.Product = item.Product
		}
		out.Items = append(out.Items, pi)
	}
	return out, nil
}

func distinctProductIDs(items []models.CartItem) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(items))
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Product]; ok {
			continue
		}
		seen[item.Product] = struct{}{}
		ids = append(ids, item.Product)
	}
	return ids
}

func fetchProducts(ctx context.Context, products store.Collection, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	var found []models.Product
	err := products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil, &found)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	return byID, nil
}
