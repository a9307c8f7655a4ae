package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/data"
	"urbancart/models"
	"urbancart/store"
)

func setupOrderController(t *testing.T) (*store.MemoryDB, *OrderController, primitive.ObjectID) {
	t.Helper()
	db := newTestDB()
	carts := data.NewCartStore(db.Collection("carts"), db.Collection("products"))
	orders := data.NewOrderStore(db.Collection("orders"), db.Collection("products"), carts)
	users := data.NewUserStore(db.Collection("users"))

	productID, err := db.Collection("products").InsertOne(context.Background(),
		&models.Product{Name: "Lamp", Slug: "lamp", Price: 1200, IsActive: true})
	require.NoError(t, err)
	return db, NewOrderController(orders, users, nil), productID
}

func TestCreateOrder(t *testing.T) {
	_, oc, productID := setupOrderController(t)
	userID := primitive.NewObjectID()

	payload := `{
		"items": [{"productId": "` + productID.Hex() + `", "quantity": 2, "price": 1200}],
		"shippingAddress": {"fullName": "Asha Rao", "line1": "12 MG Road", "city": "Bengaluru", "pincode": "560001"},
		"subtotal": 2400, "tax": 432, "shipping": 0,
		"paymentStatus": "completed", "transactionId": "txn_1"
	}`
	rec := httptest.NewRecorder()
	oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", strings.NewReader(payload), userID))

	require.Equal(t, http.StatusCreated, rec.Code)
	var order models.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD"))
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, 2832.0, order.TotalAmount)
	assert.Equal(t, "txn_1", order.PaymentID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1200.0, order.Items[0].PriceAtPurchase)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	_, oc, _ := setupOrderController(t)
	userID := primitive.NewObjectID()

	rec := httptest.NewRecorder()
	oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders",
		strings.NewReader(`{"items": []}`), userID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Items that all fail to resolve collapse to an empty order too.
	rec = httptest.NewRecorder()
	oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders",
		strings.NewReader(`{"items": [{"productId": "nope", "quantity": 1}]}`), userID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrders_EmptyIsJSONArray(t *testing.T) {
	_, oc, _ := setupOrderController(t)

	rec := httptest.NewRecorder()
	oc.GetOrders(rec, authedRequest(http.MethodGet, "/api/orders", nil, primitive.NewObjectID()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetOrderByID_Ownership(t *testing.T) {
	_, oc, productID := setupOrderController(t)
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	payload := `{"items": [{"productId": "` + productID.Hex() + `", "quantity": 1, "price": 1200}]}`
	rec := httptest.NewRecorder()
	oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", strings.NewReader(payload), owner))
	require.Equal(t, http.StatusCreated, rec.Code)
	var order models.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))

	req := authedRequest(http.MethodGet, "/api/orders/"+order.ID.Hex(), nil, owner)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID.Hex()})
	rec = httptest.NewRecorder()
	oc.GetOrderByID(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = authedRequest(http.MethodGet, "/api/orders/"+order.ID.Hex(), nil, stranger)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID.Hex()})
	rec = httptest.NewRecorder()
	oc.GetOrderByID(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPayOrder(t *testing.T) {
	_, oc, productID := setupOrderController(t)
	userID := primitive.NewObjectID()

	payload := `{"items": [{"productId": "` + productID.Hex() + `", "quantity": 1, "price": 1200}]}`
	rec := httptest.NewRecorder()
	oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", strings.NewReader(payload), userID))
	require.Equal(t, http.StatusCreated, rec.Code)
	var order models.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	require.Equal(t, models.OrderStatusPending, order.Status)

	req := authedRequest(http.MethodPut, "/api/orders/"+order.ID.Hex()+"/pay",
		strings.NewReader(`{"paymentId": "pay_42"}`), userID)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID.Hex()})
	rec = httptest.NewRecorder()
	oc.PayOrder(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, "pay_42", order.PaymentID)

	// Paying an unknown order is a 404.
	missing := primitive.NewObjectID()
	req = authedRequest(http.MethodPut, "/api/orders/"+missing.Hex()+"/pay",
		strings.NewReader(`{"paymentId": "pay_43"}`), userID)
	req = mux.SetURLVars(req, map[string]string{"id": missing.Hex()})
	rec = httptest.NewRecorder()
	oc.PayOrder(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayOrder_OnlyOwnerCanPay(t *testing.T) {
	db, oc, productID := setupOrderController(t)
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	payload := `{"items": [{"productId": "` + productID.Hex() + `", "quantity": 1, "price": 1200}]}`
	rec := httptest.NewRecorder()
	oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", strings.NewReader(payload), owner))
	require.Equal(t, http.StatusCreated, rec.Code)
	var order models.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))

	req := authedRequest(http.MethodPut, "/api/orders/"+order.ID.Hex()+"/pay",
		strings.NewReader(`{"paymentId": "stolen_pay"}`), stranger)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID.Hex()})
	rec = httptest.NewRecorder()
	oc.PayOrder(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), order.OrderNumber,
		"the response must not leak the order record")

	// The owner's order is still pending and carries no payment id.
	var stored models.Order
	require.NoError(t, db.Collection("orders").FindOne(req.Context(), bson.M{"_id": order.ID}, &stored))
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Empty(t, stored.PaymentID)
}
