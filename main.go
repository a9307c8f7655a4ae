// main.go
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"urbancart/config"
	"urbancart/controllers"
	"urbancart/data"
	"urbancart/middleware"
	"urbancart/routes"
	"urbancart/store"
	"urbancart/utils"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	utils.JwtKey = []byte(cfg.JWTSecret)

	ctx := context.Background()
	db, err := store.Connect(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("database disconnect failed")
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	emailService := utils.NewEmailService()
	if emailService == nil {
		log.Warn().Msg("POSTMARK_API_TOKEN not set, email disabled")
	}

	// Data layer
	cartStore := data.NewCartStore(db.Collection("carts"), db.Collection("products"))
	orderStore := data.NewOrderStore(db.Collection("orders"), db.Collection("products"), cartStore)
	reviewStore := data.NewReviewStore(db.Collection("reviews"), db.Collection("products"), db.Collection("users"))
	productStore := data.NewProductStore(db.Collection("products"), db.Collection("categories"))
	categoryStore := data.NewCategoryStore(db.Collection("categories"))
	userStore := data.NewUserStore(db.Collection("users"))
	addressStore := data.NewAddressStore(db.Collection("addresses"))

	// Controllers
	userController := controllers.NewUserController(userStore, addressStore)
	productController := controllers.NewProductController(productStore)
	categoryController := controllers.NewCategoryController(categoryStore)
	cartController := controllers.NewCartController(cartStore)
	orderController := controllers.NewOrderController(orderStore, userStore, emailService)
	reviewController := controllers.NewReviewController(reviewStore)

	// Router
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	limiter := middleware.NewRateLimiter(100, 15*time.Minute)

	routes.RegisterRoutes(router, userController, productController, categoryController,
		cartController, orderController, reviewController, limiter.Middleware)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.ClientURL}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, cors(router)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
