package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/models"
	"urbancart/store"
)

// ProductFilter carries the optional catalog listing filters.
type ProductFilter struct {
	Category string // category id hex, or a raw slug for legacy clients
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Sort     string // price_asc, price_desc, newest, popular
	Page     int64
	Limit    int64
}

// ProductList is a page of products plus pagination metadata.
type ProductList struct {
	Products    []models.Product `json:"products"`
	TotalPages  int64            `json:"totalPages"`
	CurrentPage int64            `json:"currentPage"`
	Total       int64            `json:"total"`
}

// CategoryGroup is one category with its active products, for the
// grouped-by-category listing.
type CategoryGroup struct {
	Category models.CategorySummary `json:"category"`
	Products []models.Product       `json:"products"`
}

// ProductStore reads and (for admins) writes catalog products.
type ProductStore struct {
	products   store.Collection
	categories store.Collection
}

// NewProductStore creates a ProductStore.
func NewProductStore(products, categories store.Collection) *ProductStore {
	return &ProductStore{products: products, categories: categories}
}

// List returns active products matching the filter, paginated.
func (s *ProductStore) List(ctx context.Context, f ProductFilter) (*ProductList, error) {
	filter := bson.M{"isActive": true}
	if f.Category != "" {
		if id, err := primitive.ObjectIDFromHex(f.Category); err == nil {
			filter["category"] = id
		} else {
			filter["category"] = f.Category
		}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": f.Search, "$options": "i"}
	}

	var sortKeys bson.D
	switch f.Sort {
	case "price_asc":
		sortKeys = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sortKeys = bson.D{{Key: "price", Value: -1}}
	case "popular":
		sortKeys = bson.D{{Key: "popularityScore", Value: -1}}
	case "newest":
		sortKeys = bson.D{{Key: "createdAt", Value: -1}}
	default:
		sortKeys = bson.D{{Key: "createdAt", Value: -1}}
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 12
	}

	var products []models.Product
	err := s.products.Find(ctx, filter, &store.FindOptions{
		Sort:  sortKeys,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}, &products)
	if err != nil {
		return nil, err
	}
	total, err := s.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductList{
		Products:    products,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		Total:       total,
	}, nil
}

// ByIDs fetches active products for an explicit id list (wishlist support).
// Ids that do not parse are skipped.
func (s *ProductStore) ByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var parsed []primitive.ObjectID
	for _, raw := range ids {
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			parsed = append(parsed, id)
		}
	}
	if len(parsed) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	err := s.products.Find(ctx, bson.M{"_id": bson.M{"$in": parsed}, "isActive": true}, nil, &products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Featured returns the top featured products by popularity.
func (s *ProductStore) Featured(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.products.Find(ctx,
		bson.M{"isActive": true, "isFeatured": true},
		&store.FindOptions{Sort: bson.D{{Key: "popularityScore", Value: -1}}, Limit: 8},
		&products)
	return products, err
}

// Trending returns the most viewed active products.
func (s *ProductStore) Trending(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.products.Find(ctx,
		bson.M{"isActive": true},
		&store.FindOptions{
			Sort:  bson.D{{Key: "views", Value: -1}, {Key: "popularityScore", Value: -1}},
			Limit: 12,
		},
		&products)
	return products, err
}

// BySlug fetches an active product by slug and counts the view.
func (s *ProductStore) BySlug(ctx context.Context, slug string) (*models.Product, error) {
	filter := bson.M{"slug": slug, "isActive": true}
	var product models.Product
	err := s.products.FindOne(ctx, filter, &product)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, fmt.Errorf("product %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.products.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"views": 1}}); err != nil {
		return nil, err
	}
	product.Views++
	return &product, nil
}

// Recommended returns active products from the same category within a ±30%
// price band of the given product, most popular first.
func (s *ProductStore) Recommended(ctx context.Context, productID primitive.ObjectID) ([]models.Product, error) {
	var current models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": productID}, &current)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, fmt.Errorf("product %s: %w", productID.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	band := current.Price * 0.3
	var products []models.Product
	err = s.products.Find(ctx, bson.M{
		"_id":      bson.M{"$ne": current.ID},
		"category": current.Category,
		"price":    bson.M{"$gte": current.Price - band, "$lte": current.Price + band},
		"isActive": true,
	}, &store.FindOptions{Sort: bson.D{{Key: "popularityScore", Value: -1}}, Limit: 8}, &products)
	return products, err
}

// GroupedByCategory returns every active product grouped under its category
// summary, categories sorted by name. Products whose category record is
// missing are omitted; the storefront has no shelf to render an
// uncategorized group on.
func (s *ProductStore) GroupedByCategory(ctx context.Context) ([]CategoryGroup, error) {
	var products []models.Product
	if err := s.products.Find(ctx, bson.M{"isActive": true}, nil, &products); err != nil {
		return nil, err
	}
	var categories []models.Category
	if err := s.categories.Find(ctx, bson.M{}, nil, &categories); err != nil {
		return nil, err
	}

	byCategory := make(map[primitive.ObjectID]*CategoryGroup, len(categories))
	for _, category := range categories {
		byCategory[category.ID] = &CategoryGroup{
			Category: models.CategorySummary{ID: category.ID, Name: category.Name, Slug: category.Slug},
		}
	}
	for _, product := range products {
		group, ok := byCategory[product.Category]
		if !ok {
			continue
		}
		group.Products = append(group.Products, product)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, group := range byCategory {
		if len(group.Products) > 0 {
			groups = append(groups, *group)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Category.Name < groups[j].Category.Name
	})
	return groups, nil
}

// Create inserts a new product (admin only).
func (s *ProductStore) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	id, err := s.products.InsertOne(ctx, product)
	if err != nil {
		return nil, err
	}
	product.ID = id
	return product, nil
}

// Update overwrites a product's mutable fields (admin only).
func (s *ProductStore) Update(ctx context.Context, productID primitive.ObjectID, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	matched, err := s.products.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": bson.M{
		"name":           product.Name,
		"slug":           product.Slug,
		"description":    product.Description,
		"price":          product.Price,
		"mrpPrice":       product.MRPPrice,
		"stock":          product.Stock,
		"brand":          product.Brand,
		"thumbnailImage": product.ThumbnailImage,
		"images":         product.Images,
		"category":       product.Category,
		"tags":           product.Tags,
		"isActive":       product.IsActive,
		"isFeatured":     product.IsFeatured,
		"updatedAt":      product.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("product %s: %w", productID.Hex(), ErrNotFound)
	}
	return nil
}

// Delete removes a product (admin only).
func (s *ProductStore) Delete(ctx context.Context, productID primitive.ObjectID) error {
	deleted, err := s.products.DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("product %s: %w", productID.Hex(), ErrNotFound)
	}
	return nil
}
