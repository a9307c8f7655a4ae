package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/data"
	"urbancart/store"
)

func setupUserController(t *testing.T) (*store.MemoryDB, *UserController) {
	t.Helper()
	db := newTestDB()
	users := data.NewUserStore(db.Collection("users"))
	addresses := data.NewAddressStore(db.Collection("addresses"))
	return db, NewUserController(users, addresses)
}

func TestRegisterAndLogin(t *testing.T) {
	_, uc := setupUserController(t)

	rec := httptest.NewRecorder()
	uc.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Token string `json:"token"`
		User  struct {
			ID   primitive.ObjectID `json:"_id"`
			Name string             `json:"name"`
			Role string             `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "Asha", created.User.Name)
	assert.Equal(t, "user", created.User.Role)
	assert.NotContains(t, rec.Body.String(), "s3cret", "password never serialized")

	rec = httptest.NewRecorder()
	uc.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "asha@example.com", "password": "s3cret"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var logged struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&logged))
	assert.NotEmpty(t, logged.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	_, uc := setupUserController(t)

	rec := httptest.NewRecorder()
	uc.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, payload := range []string{
		`{"email": "asha@example.com", "password": "wrong"}`,
		`{"email": "nobody@example.com", "password": "s3cret"}`,
	} {
		rec = httptest.NewRecorder()
		uc.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(payload)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, uc := setupUserController(t)
	payload := `{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}`

	rec := httptest.NewRecorder()
	uc.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	uc.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlistEndpoints(t *testing.T) {
	_, uc := setupUserController(t)

	rec := httptest.NewRecorder()
	uc.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		User struct {
			ID primitive.ObjectID `json:"_id"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	userID := created.User.ID

	rec = httptest.NewRecorder()
	uc.GetWishlist(rec, authedRequest(http.MethodGet, "/api/users/wishlist", nil, userID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
