package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"urbancart/data"
	"urbancart/models"
)

// ProductController handles product-related requests
type ProductController struct {
	Products *data.ProductStore
}

// NewProductController creates a new ProductController
func NewProductController(products *data.ProductStore) *ProductController {
	return &ProductController{Products: products}
}

// GetProducts retrieves products with filters and pagination. An explicit
// "ids" list bypasses the filters (wishlist support).
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if ids := q.Get("ids"); ids != "" {
		var list []string
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				list = append(list, id)
			}
		}
		products, err := pc.Products.ByIDs(r.Context(), list)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]models.Product{"products": products})
		return
	}

	filter := data.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if v, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil {
		filter.Page = v
	}
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil {
		filter.Limit = v
	}

	list, err := pc.Products.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetGroupedByCategory returns all active products grouped by category
func (pc *ProductController) GetGroupedByCategory(w http.ResponseWriter, r *http.Request) {
	groups, err := pc.Products.GroupedByCategory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// GetFeatured returns the featured product shelf
func (pc *ProductController) GetFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := pc.Products.Featured(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetTrending returns the most viewed products
func (pc *ProductController) GetTrending(w http.ResponseWriter, r *http.Request) {
	products, err := pc.Products.Trending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetRecommended returns rule-based recommendations for a product
func (pc *ProductController) GetRecommended(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	products, err := pc.Products.Recommended(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProductBySlug retrieves a single product and counts the view
func (pc *ProductController) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := pc.Products.BySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}
	created, err := pc.Products.Create(r.Context(), &product)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := pc.Products.Update(r.Context(), productID, &product); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product updated")
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := pc.Products.Delete(r.Context(), productID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted")
}
