package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/data"
	"urbancart/middleware"
	"urbancart/models"
	"urbancart/store"
	"urbancart/utils"
)

func newTestDB() *store.MemoryDB {
	db := store.NewMemoryDB()
	db.EnsureUnique("carts", "user")
	db.EnsureUnique("reviews", "product", "user")
	db.EnsureUnique("orders", "orderNumber")
	return db
}

// authedRequest builds a request carrying the claims AuthMiddleware would
// have attached.
func authedRequest(method, target string, body io.Reader, userID primitive.ObjectID) *http.Request {
	req := httptest.NewRequest(method, target, body)
	claims := &utils.Claims{UserID: userID.Hex(), Role: "user"}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func setupCartController(t *testing.T) (*store.MemoryDB, *CartController, primitive.ObjectID) {
	t.Helper()
	db := newTestDB()
	carts := data.NewCartStore(db.Collection("carts"), db.Collection("products"))
	productID, err := db.Collection("products").InsertOne(context.Background(),
		&models.Product{Name: "Mug", Slug: "mug", Price: 299, IsActive: true})
	require.NoError(t, err)
	return db, NewCartController(carts), productID
}

func TestAddToCart(t *testing.T) {
	_, cc, productID := setupCartController(t)
	userID := primitive.NewObjectID()

	body := strings.NewReader(`{"productId":"` + productID.Hex() + `","quantity":2}`)
	rec := httptest.NewRecorder()
	cc.AddToCart(rec, authedRequest(http.MethodPost, "/api/cart", body, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var cart models.PopulatedCart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddToCart_BadInput(t *testing.T) {
	_, cc, productID := setupCartController(t)
	userID := primitive.NewObjectID()

	rec := httptest.NewRecorder()
	cc.AddToCart(rec, authedRequest(http.MethodPost, "/api/cart",
		strings.NewReader(`{"productId":"garbage","quantity":1}`), userID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	cc.AddToCart(rec, authedRequest(http.MethodPost, "/api/cart",
		strings.NewReader(`{"productId":"`+productID.Hex()+`","quantity":0}`), userID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddToCart_Unauthenticated(t *testing.T) {
	_, cc, productID := setupCartController(t)

	req := httptest.NewRequest(http.MethodPost, "/api/cart",
		strings.NewReader(`{"productId":"`+productID.Hex()+`","quantity":1}`))
	rec := httptest.NewRecorder()
	cc.AddToCart(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateCartItem(t *testing.T) {
	_, cc, productID := setupCartController(t)
	userID := primitive.NewObjectID()

	rec := httptest.NewRecorder()
	cc.AddToCart(rec, authedRequest(http.MethodPost, "/api/cart",
		strings.NewReader(`{"productId":"`+productID.Hex()+`","quantity":1}`), userID))
	require.Equal(t, http.StatusOK, rec.Code)
	var cart models.PopulatedCart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	itemID := cart.Items[0].ID

	req := authedRequest(http.MethodPut, "/api/cart/"+itemID.Hex(),
		strings.NewReader(`{"quantity":5}`), userID)
	req = mux.SetURLVars(req, map[string]string{"itemId": itemID.Hex()})
	rec = httptest.NewRecorder()
	cc.UpdateCartItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestUpdateCartItem_Errors(t *testing.T) {
	_, cc, _ := setupCartController(t)
	userID := primitive.NewObjectID()

	// Malformed path id.
	req := authedRequest(http.MethodPut, "/api/cart/garbage",
		strings.NewReader(`{"quantity":5}`), userID)
	req = mux.SetURLVars(req, map[string]string{"itemId": "garbage"})
	rec := httptest.NewRecorder()
	cc.UpdateCartItem(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Well-formed id for an item that does not exist.
	missing := primitive.NewObjectID()
	req = authedRequest(http.MethodPut, "/api/cart/"+missing.Hex(),
		strings.NewReader(`{"quantity":5}`), userID)
	req = mux.SetURLVars(req, map[string]string{"itemId": missing.Hex()})
	rec = httptest.NewRecorder()
	cc.UpdateCartItem(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveFromCartAndClear(t *testing.T) {
	_, cc, productID := setupCartController(t)
	userID := primitive.NewObjectID()

	rec := httptest.NewRecorder()
	cc.AddToCart(rec, authedRequest(http.MethodPost, "/api/cart",
		strings.NewReader(`{"productId":"`+productID.Hex()+`","quantity":3}`), userID))
	require.Equal(t, http.StatusOK, rec.Code)
	var cart models.PopulatedCart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	itemID := cart.Items[0].ID

	req := authedRequest(http.MethodDelete, "/api/cart/"+itemID.Hex(), nil, userID)
	req = mux.SetURLVars(req, map[string]string{"itemId": itemID.Hex()})
	rec = httptest.NewRecorder()
	cc.RemoveFromCart(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	assert.Empty(t, cart.Items)

	// Clearing is fine even when the cart is already empty.
	rec = httptest.NewRecorder()
	cc.ClearCart(rec, authedRequest(http.MethodDelete, "/api/cart", nil, userID))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCart_CreatesOnFirstRead(t *testing.T) {
	_, cc, _ := setupCartController(t)
	userID := primitive.NewObjectID()

	rec := httptest.NewRecorder()
	cc.GetCart(rec, authedRequest(http.MethodGet, "/api/cart", nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var cart models.PopulatedCart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	assert.Equal(t, userID, cart.User)
	assert.Empty(t, cart.Items)
}
