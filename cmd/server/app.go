package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/pagebound/bookstore-api/internal/config"
	"github.com/pagebound/bookstore-api/internal/platform/postgres"
	"github.com/pagebound/bookstore-api/internal/service/auth"
	"github.com/pagebound/bookstore-api/internal/service/order"
	"github.com/pagebound/bookstore-api/internal/store"
)

// application holds the shared dependencies so wiring and shutdown live in
// one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore     store.UserStore
	taxonomyStore store.TaxonomyStore
	bookStore     store.BookStore
	reviewStore   store.ReviewStore
	cartStore     store.CartStore
	addressStore  store.AddressStore
	orderStore    store.OrderStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	orderService     *order.Service
}

// newApplication creates an application instance with all dependencies
// initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost)
	app.taxonomyStore = postgres.NewPostgresTaxonomyStore(db)
	app.bookStore = postgres.NewPostgresBookStore(db)
	app.reviewStore = postgres.NewPostgresReviewStore(db)
	app.cartStore = postgres.NewPostgresCartStore(db)
	app.addressStore = postgres.NewPostgresAddressStore(db)
	app.orderStore = postgres.NewPostgresOrderStore(db)

	app.orderService = order.NewService(
		db,
		app.orderStore,
		app.cartStore,
		app.addressStore,
		app.userStore,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
