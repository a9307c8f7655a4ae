package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"urbancart/data"
)

// CategoryController handles category-related requests
type CategoryController struct {
	Categories *data.CategoryStore
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(categories *data.CategoryStore) *CategoryController {
	return &CategoryController{Categories: categories}
}

// GetCategories retrieves the active root categories
func (cc *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := cc.Categories.Roots(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetCategoryBySlug retrieves a category with its subcategories
func (cc *CategoryController) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := cc.Categories.BySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// GetSubcategories retrieves a category's active children
func (cc *CategoryController) GetSubcategories(w http.ResponseWriter, r *http.Request) {
	parentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	subcategories, err := cc.Categories.Subcategories(r.Context(), parentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subcategories)
}
