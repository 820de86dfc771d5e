package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ezstore/electronics-store-backend/internal/api/handlers"
	"github.com/ezstore/electronics-store-backend/internal/api/middleware"
	"github.com/ezstore/electronics-store-backend/internal/cache"
	"github.com/ezstore/electronics-store-backend/internal/config"
	"github.com/ezstore/electronics-store-backend/internal/health"
	"github.com/ezstore/electronics-store-backend/internal/metrics"
	"github.com/ezstore/electronics-store-backend/internal/models"
	repository "github.com/ezstore/electronics-store-backend/internal/repositories"
	service "github.com/ezstore/electronics-store-backend/internal/services"
	"github.com/ezstore/electronics-store-backend/pkg/sendgrid"
)

func main() {
	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	// Redis setup
	redisClient, err := cache.NewRedisClient(&cfg.RedisConnect)
	if err != nil {
		slog.Error("Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cartCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	defer cartCache.Close()

	jwtKey := []byte(cfg.Security.JWTKey)

	emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	notificationService := service.NewNotificationService(emailService)
	cartService := service.NewCartService(repos.Cart, repos.Product, cartCache)
	cartHandler := handlers.NewCartHandler(cartService, notificationService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("Error creating health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	customer := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.Authenticate(authMiddleware.RequireRoles(h, models.RoleCustomer))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.Authenticate(authMiddleware.RequireRoles(h, models.RoleAdmin, models.RoleManager))
	}

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/carts", customer(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/carts", customer(cartHandler.AddProduct()))
	routerMux.HandleFunc("PATCH /api/v1/carts", customer(cartHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/carts/history", customer(cartHandler.GetHistory()))
	routerMux.HandleFunc("DELETE /api/v1/carts/products/{model}", customer(cartHandler.RemoveProduct()))
	routerMux.HandleFunc("DELETE /api/v1/carts/current", customer(cartHandler.ClearCart()))
	routerMux.HandleFunc("GET /api/v1/carts/all", admin(cartHandler.GetAllCarts()))
	routerMux.HandleFunc("DELETE /api/v1/carts", admin(cartHandler.DeleteAllCarts()))
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = metrics.Middleware(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("Server shut down gracefully. All connections closed.")
	}
}
