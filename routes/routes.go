// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"urbancart/controllers"
	"urbancart/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	userController *controllers.UserController,
	productController *controllers.ProductController,
	categoryController *controllers.CategoryController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	reviewController *controllers.ReviewController,
	apiMiddleware ...mux.MiddlewareFunc,
) {
	router.HandleFunc("/health", controllers.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(apiMiddleware...)

	// Auth routes
	api.HandleFunc("/auth/register", userController.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", userController.Login).Methods(http.MethodPost)

	// Product routes (specific paths before the slug catch-all)
	api.HandleFunc("/products", productController.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/grouped-by-category/list", productController.GetGroupedByCategory).Methods(http.MethodGet)
	api.HandleFunc("/products/featured/list", productController.GetFeatured).Methods(http.MethodGet)
	api.HandleFunc("/products/trending/list", productController.GetTrending).Methods(http.MethodGet)
	api.HandleFunc("/products/recommended/{productId}", productController.GetRecommended).Methods(http.MethodGet)
	api.HandleFunc("/products/{slug}", productController.GetProductBySlug).Methods(http.MethodGet)

	// Admin product routes
	admin := api.PathPrefix("/products").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("", productController.CreateProduct).Methods(http.MethodPost)
	admin.HandleFunc("/{id}", productController.UpdateProduct).Methods(http.MethodPut)
	admin.HandleFunc("/{id}", productController.DeleteProduct).Methods(http.MethodDelete)

	// Category routes
	api.HandleFunc("/categories", categoryController.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{slug}", categoryController.GetCategoryBySlug).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}/subcategories", categoryController.GetSubcategories).Methods(http.MethodGet)

	// Review routes (listing is public, creation is not)
	api.HandleFunc("/reviews/product/{productId}", reviewController.GetProductReviews).Methods(http.MethodGet)

	protected := api.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)

	// User routes
	protected.HandleFunc("/users/profile", userController.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/users/profile", userController.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/users/addresses", userController.GetAddresses).Methods(http.MethodGet)
	protected.HandleFunc("/users/addresses", userController.AddAddress).Methods(http.MethodPost)
	protected.HandleFunc("/users/wishlist", userController.GetWishlist).Methods(http.MethodGet)
	protected.HandleFunc("/users/wishlist/{productId}", userController.AddToWishlist).Methods(http.MethodPost)
	protected.HandleFunc("/users/wishlist/{productId}", userController.RemoveFromWishlist).Methods(http.MethodDelete)

	// Cart routes
	protected.HandleFunc("/cart", cartController.GetCart).Methods(http.MethodGet)
	protected.HandleFunc("/cart", cartController.AddToCart).Methods(http.MethodPost)
	protected.HandleFunc("/cart", cartController.ClearCart).Methods(http.MethodDelete)
	protected.HandleFunc("/cart/{itemId}", cartController.UpdateCartItem).Methods(http.MethodPut)
	protected.HandleFunc("/cart/{itemId}", cartController.RemoveFromCart).Methods(http.MethodDelete)

	// Order routes
	protected.HandleFunc("/orders", orderController.CreateOrder).Methods(http.MethodPost)
	protected.HandleFunc("/orders", orderController.GetOrders).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{id}", orderController.GetOrderByID).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{id}/pay", orderController.PayOrder).Methods(http.MethodPut)

	// Review creation
	protected.HandleFunc("/reviews", reviewController.CreateReview).Methods(http.MethodPost)
}
