package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order. Only pending and paid are
// reachable today; cancelled is admitted for forward compatibility.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// OrderItem is a frozen purchase line. PriceAtPurchase is captured at
// checkout and never recomputed from live product data.
type OrderItem struct {
	Product         primitive.ObjectID `bson:"product" json:"product"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	PriceAtPurchase float64            `bson:"priceAtPurchase" json:"priceAtPurchase"`
}

// ShippingAddress is the canonical seven-field delivery address.
type ShippingAddress struct {
	FullName string `bson:"fullName" json:"fullName"`
	Line1    string `bson:"line1" json:"line1"`
	Line2    string `bson:"line2" json:"line2"`
	City     string `bson:"city" json:"city"`
	State    string `bson:"state" json:"state"`
	Pincode  string `bson:"pincode" json:"pincode"`
	Phone    string `bson:"phone" json:"phone"`
}

// Order is a user's order. Immutable after creation except for the
// payment transition.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          OrderStatus        `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentID       string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PopulatedOrderItem carries the full product record in place of the raw
// reference, falling back to the ObjectID when the product is gone.
type PopulatedOrderItem struct {
	Product         interface{} `json:"product"`
	Quantity        int         `json:"quantity"`
	PriceAtPurchase float64     `json:"priceAtPurchase"`
}

// PopulatedOrder is the response shape for order reads.
type PopulatedOrder struct {
	ID              primitive.ObjectID   `json:"_id"`
	OrderNumber     string               `json:"orderNumber"`
	User            primitive.ObjectID   `json:"user"`
	Items           []PopulatedOrderItem `json:"items"`
	ShippingAddress ShippingAddress      `json:"shippingAddress"`
	TotalAmount     float64              `json:"totalAmount"`
	Status          OrderStatus          `json:"status"`
	PaymentStatus   PaymentStatus        `json:"paymentStatus"`
	PaymentID       string               `json:"paymentId,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}
