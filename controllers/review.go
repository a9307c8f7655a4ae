package controllers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"urbancart/data"
	"urbancart/models"
)

// ReviewController handles review-related requests
type ReviewController struct {
	Reviews *data.ReviewStore
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviews *data.ReviewStore) *ReviewController {
	return &ReviewController{Reviews: reviews}
}

// GetProductReviews lists a product's reviews, newest first
func (rc *ReviewController) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	reviews, err := rc.Reviews.ListForProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []models.PopulatedReview{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

// CreateReview adds a review; one per product per user
func (rc *ReviewController) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body struct {
		ProductID string `json:"productId"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(body.ProductID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	review, err := rc.Reviews.Create(r.Context(), productID, userID, body.Rating, body.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}
