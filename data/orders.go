package data

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/models"
	"urbancart/store"
)

const orderNumberPrefix = "ORD"

// OrderRequest is the loosely-shaped client checkout payload. Historical
// clients disagree on field names, so several aliases are accepted and
// reconciled by NormalizeOrderRequest.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress *AddressRequest    `json:"shippingAddress"`
	DeliveryAddress *AddressRequest    `json:"deliveryAddress"`
	TotalAmount     *float64           `json:"totalAmount"`
	GrandTotal      *float64           `json:"grandTotal"`
	Subtotal        *float64           `json:"subtotal"`
	Tax             *float64           `json:"tax"`
	Shipping        *float64           `json:"shipping"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentStatus   string             `json:"paymentStatus"`
	TransactionID   string             `json:"transactionId"`
	FullName        string             `json:"fullName"`
	Phone           string             `json:"phone"`
}

// OrderItemRequest is one submitted line. The product may arrive under
// "product" (as an id or a populated object) or under "productId".
type OrderItemRequest struct {
	Product         ProductRef `json:"product"`
	ProductID       string     `json:"productId"`
	Quantity        int        `json:"quantity"`
	PriceAtPurchase *float64   `json:"priceAtPurchase"`
	Price           *float64   `json:"price"`
}

// ProductRef accepts either a hex id string or a populated product object
// carrying its own id and price.
type ProductRef struct {
	ID    string
	Price *float64
}

func (p *ProductRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.ID = s
		return nil
	}
	var obj struct {
		ID    string   `json:"_id"`
		AltID string   `json:"id"`
		Price *float64 `json:"price"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.ID = obj.ID
	if p.ID == "" {
		p.ID = obj.AltID
	}
	p.Price = obj.Price
	return nil
}

// AddressRequest accepts both delivery-address shapes seen from clients;
// "address" and "line1" name the same field.
type AddressRequest struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
}

// OrderDraft is the canonical, validated form of a checkout submission.
type OrderDraft struct {
	Items           []models.OrderItem
	ShippingAddress models.ShippingAddress
	TotalAmount     float64
	PaymentStatus   models.PaymentStatus
	PaymentID       string
}

// NormalizeOrderRequest reduces a raw payload to a canonical draft. Items
// without a resolvable product reference are dropped, quantities default to
// one, and the purchase price resolves by precedence: explicit purchase
// price, generic price, price embedded in a populated product, then zero.
func NormalizeOrderRequest(req *OrderRequest) *OrderDraft {
	draft := &OrderDraft{Items: make([]models.OrderItem, 0, len(req.Items))}

	for _, item := range req.Items {
		ref := item.Product.ID
		if ref == "" {
			ref = item.ProductID
		}
		productID, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			continue
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		var price float64
		switch {
		case item.PriceAtPurchase != nil:
			price = *item.PriceAtPurchase
		case item.Price != nil:
			price = *item.Price
		case item.Product.Price != nil:
			price = *item.Product.Price
		}
		draft.Items = append(draft.Items, models.OrderItem{
			Product:         productID,
			Quantity:        quantity,
			PriceAtPurchase: price,
		})
	}

	addr := req.ShippingAddress
	if addr == nil {
		addr = req.DeliveryAddress
	}
	if addr == nil {
		addr = &AddressRequest{}
	}
	fullName := addr.FullName
	if fullName == "" {
		fullName = req.FullName
	}
	line1 := addr.Address
	if line1 == "" {
		line1 = addr.Line1
	}
	phone := addr.Phone
	if phone == "" {
		phone = req.Phone
	}
	draft.ShippingAddress = models.ShippingAddress{
		FullName: fullName,
		Line1:    line1,
		Line2:    addr.Line2,
		City:     addr.City,
		State:    addr.State,
		Pincode:  addr.Pincode,
		Phone:    phone,
	}

	switch {
	case req.TotalAmount != nil:
		draft.TotalAmount = *req.TotalAmount
	case req.GrandTotal != nil:
		draft.TotalAmount = *req.GrandTotal
	case req.Subtotal != nil && req.Tax != nil:
		var shipping float64
		if req.Shipping != nil {
			shipping = *req.Shipping
		}
		draft.TotalAmount = *req.Subtotal + *req.Tax + shipping
	}

	draft.PaymentStatus = models.PaymentStatus(req.PaymentStatus)
	if draft.PaymentStatus == "" {
		draft.PaymentStatus = models.PaymentStatusPending
	}
	draft.PaymentID = req.TransactionID
	return draft
}

// OrderStore assembles, persists, and reads orders.
type OrderStore struct {
	orders   store.Collection
	products store.Collection
	carts    *CartStore
}

// NewOrderStore creates an OrderStore. The cart store is used to clear the
// buyer's cart after checkout.
func NewOrderStore(orders, products store.Collection, carts *CartStore) *OrderStore {
	return &OrderStore{orders: orders, products: products, carts: carts}
}

// newOrderNumber builds a human-referenceable order number from the current
// time plus a random suffix. Uniqueness is still enforced by the index on
// orderNumber.
func newOrderNumber() string {
	u := uuid.New()
	return fmt.Sprintf("%s%d%s", orderNumberPrefix, time.Now().UnixMilli(), hex.EncodeToString(u[:3]))
}

// Create persists a draft as an order for the user. A draft with no items is
// rejected before any write. A completed payment status marks the order paid
// immediately; anything else leaves it pending. The buyer's cart is cleared
// afterwards as a separate best-effort write: if it fails the order stands
// and the stale cart is logged.
func (s *OrderStore) Create(ctx context.Context, userID primitive.ObjectID, draft *OrderDraft) (*models.Order, error) {
	if len(draft.Items) == 0 {
		return nil, fmt.Errorf("order has no items: %w", ErrInvalidInput)
	}

	status := models.OrderStatusPending
	if draft.PaymentStatus == models.PaymentStatusCompleted {
		status = models.OrderStatusPaid
	}
	now := time.Now().UTC()
	order := models.Order{
		OrderNumber:     newOrderNumber(),
		User:            userID,
		Items:           draft.Items,
		ShippingAddress: draft.ShippingAddress,
		TotalAmount:     draft.TotalAmount,
		Status:          status,
		PaymentStatus:   draft.PaymentStatus,
		PaymentID:       draft.PaymentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := s.orders.InsertOne(ctx, order)
	if err != nil {
		return nil, err
	}
	order.ID = id

	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user", userID.Hex()).Str("order", order.OrderNumber).
			Msg("cart not cleared after order")
	}
	return &order, nil
}

// MarkPaid transitions the requester's order to paid/completed and records
// the payment identifier. Missing orders yield ErrNotFound; orders owned by
// another user yield ErrForbidden and are left untouched.
func (s *OrderStore) MarkPaid(ctx context.Context, orderID, requesterID primitive.ObjectID, paymentID string) (*models.Order, error) {
	var current models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": orderID}, &current)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, fmt.Errorf("order %s: %w", orderID.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if current.User != requesterID {
		return nil, fmt.Errorf("order %s: %w", orderID.Hex(), ErrForbidden)
	}

	matched, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{
			"paymentStatus": models.PaymentStatusCompleted,
			"status":        models.OrderStatusPaid,
			"paymentId":     paymentID,
			"updatedAt":     time.Now().UTC(),
		}})
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, fmt.Errorf("order %s: %w", orderID.Hex(), ErrNotFound)
	}
	var order models.Order
	if err := s.orders.FindOne(ctx, bson.M{"_id": orderID}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForUser returns the user's orders, newest first, with products
// populated across all orders in one batched lookup.
func (s *OrderStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.PopulatedOrder, error) {
	var orders []models.Order
	err := s.orders.Find(ctx, bson.M{"user": userID},
		&store.FindOptions{Sort: bson.D{{Key: "createdAt", Value: -1}}}, &orders)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, orders)
}

// GetByID fetches a single order and enforces that the requester owns it.
func (s *OrderStore) GetByID(ctx context.Context, orderID, requesterID primitive.ObjectID) (*models.PopulatedOrder, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": orderID}, &order)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, fmt.Errorf("order %s: %w", orderID.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if order.User != requesterID {
		return nil, fmt.Errorf("order %s: %w", orderID.Hex(), ErrForbidden)
	}
	populated, err := s.populate(ctx, []models.Order{order})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

func (s *OrderStore) populate(ctx context.Context, orders []models.Order) ([]models.PopulatedOrder, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, order := range orders {
		for _, item := range order.Items {
			if _, ok := seen[item.Product]; ok {
				continue
			}
			seen[item.Product] = struct{}{}
			ids = append(ids, item.Product)
		}
	}

	byID := map[primitive.ObjectID]*models.Product{}
	if len(ids) > 0 {
		var err error
		byID, err = fetchProducts(ctx, s.products, ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]models.PopulatedOrder, 0, len(orders))
	for _, order := range orders {
		po := models.PopulatedOrder{
			ID:              order.ID,
			OrderNumber:     order.OrderNumber,
			User:            order.User,
			Items:           make([]models.PopulatedOrderItem, 0, len(order.Items)),
			ShippingAddress: order.ShippingAddress,
			TotalAmount:     order.TotalAmount,
			Status:          order.Status,
			PaymentStatus:   order.PaymentStatus,
			PaymentID:       order.PaymentID,
			CreatedAt:       order.CreatedAt,
			UpdatedAt:       order.UpdatedAt,
		}
		for _, item := range order.Items {
			pi := models.PopulatedOrderItem{
				Quantity:        item.Quantity,
				PriceAtPurchase: item.PriceAtPurchase,
			}
			if p, ok := byID[item.Product]; ok {
				pi.Product = p
			} else {
				pi.Product = item.Product
			}
			po.Items = append(po.Items, pi)
		}
		out = append(out, po)
	}
	return out, nil
}
