package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/allbirds/storefront/internal/app"
	"github.com/allbirds/storefront/internal/app/handlers"
	"github.com/allbirds/storefront/internal/config"
	"github.com/allbirds/storefront/internal/domain/models"
	"github.com/allbirds/storefront/internal/lib/logger"
	"github.com/allbirds/storefront/internal/lib/logger/handlers/urllog"
	"github.com/allbirds/storefront/internal/reservation"
	"github.com/allbirds/storefront/internal/security/jwtmiddleware"
	"github.com/allbirds/storefront/internal/service"
	"github.com/allbirds/storefront/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(middleware.Timeout(cfg.HTTPServer.Timeout))

	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	orderService := service.NewOrderService(application.Logger, application.DB, orderRepo, application.Reservations)
	reservationService := service.NewReservationService(application.Logger, application.Reservations, orderRepo)

	// public endpoints
	router.Post("/api/auth/signup", handlers.SignupHandler(application.Logger, authService))
	router.Post("/api/auth/login", handlers.LoginHandler(application.Logger, authService))

	jwtMW := jwtmiddleware.NewJWTMiddleware()

	// any authenticated user
	router.Group(func(r chi.Router) {
		r.Use(jwtMW)

		r.Get("/api/auth/profile", handlers.ProfileHandler(application.Logger))

		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Get("/api/orders/recent", handlers.RecentOrdersHandler(application.Logger, orderService))
		r.Get("/api/orders/{id}", handlers.GetOrderHandler(application.Logger, orderService))
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))
		r.Put("/api/orders/{id}/status", handlers.UpdateStatusHandler(application.Logger, orderService))

		r.Put("/api/orders/{id}/reservation", handlers.ReserveHandler(application.Logger, reservationService))
		r.Get("/api/orders/{id}/reservation", handlers.GetReservationHandler(application.Logger, reservationService))
		r.Delete("/api/orders/{id}/reservation", handlers.ClearReservationHandler(application.Logger, reservationService))

		r.Get("/api/products", handlers.ListProductsHandler(application.Logger, productRepo))
	})

	// management endpoints
	router.Group(func(r chi.Router) {
		r.Use(jwtMW)
		r.Use(jwtmiddleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))

		r.Get("/api/users", handlers.ListUsersHandler(application.Logger, userRepo))
		r.Post("/api/users", handlers.CreateUserHandler(application.Logger, userRepo))
		r.Put("/api/users/{id}", handlers.UpdateUserHandler(application.Logger, userRepo))
		r.Delete("/api/users/{id}", handlers.DeleteUserHandler(application.Logger, userRepo))

		r.Post("/api/products", handlers.CreateProductHandler(application.Logger, productRepo))
		r.Put("/api/products/{id}", handlers.UpdateProductHandler(application.Logger, productRepo))
		r.Delete("/api/products/{id}", handlers.DeleteProductHandler(application.Logger, productRepo))
	})

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	sweeper := reservation.NewSweeper(application.Reservations, cfg.Reservations.SweepInterval, log)
	sweeper.Start(sweepCtx)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	sweepCancel()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
