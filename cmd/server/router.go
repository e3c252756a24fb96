package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pagebound/bookstore-api/internal/api"
	apiMiddleware "github.com/pagebound/bookstore-api/internal/api/middleware"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// setupRouter wires all routes and middleware over the application's
// dependencies.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	bookHandler := api.NewBookHandler(app.bookStore)
	reviewHandler := api.NewReviewHandler(app.reviewStore, app.bookStore)
	cartHandler := api.NewCartHandler(app.cartStore, app.bookStore)
	addressHandler := api.NewAddressHandler(app.addressStore)
	orderHandler := api.NewOrderHandler(app.orderService, app.orderStore)
	groupHandler := api.NewGroupHandler(app.userStore)
	taxonomyHandler := api.NewTaxonomyHandler(app.taxonomyStore)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	throttle := apiMiddleware.Throttle(app.config.Throttle)
	staffOnly := apiMiddleware.RequireRoles(domain.RoleAdmin, domain.RoleManager)

	r.Route("/api", func(r chi.Router) {
		// Public routes: authentication, catalog reads and lookups.
		r.Group(func(r chi.Router) {
			r.Use(throttle)

			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.RefreshToken)

			r.Get("/books", bookHandler.List)
			r.Get("/books/{bookID}", bookHandler.Get)
			r.Get("/books/{bookID}/reviews", reviewHandler.List)
			r.Get("/books/{bookID}/reviews/{reviewID}", reviewHandler.Get)

			for path, kind := range map[string]store.TaxonomyKind{
				"/genres":         store.KindGenre,
				"/stocks":         store.KindStock,
				"/book-formats":   store.KindBookFormat,
				"/order-statuses": store.KindOrderStatus,
				"/countries":      store.KindCountry,
			} {
				r.Get(path, taxonomyHandler.List(kind))
				r.Get(path+"/{entryID}", taxonomyHandler.Get(kind))
			}
		})

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(throttle)

			// Catalog writes are staff-only.
			r.Group(func(r chi.Router) {
				r.Use(staffOnly)
				r.Post("/books", bookHandler.Create)
				r.Put("/books/{bookID}", bookHandler.Update)
				r.Delete("/books/{bookID}", bookHandler.Delete)
			})

			r.Post("/books/{bookID}/reviews", reviewHandler.Create)
			r.Put("/books/{bookID}/reviews/{reviewID}", reviewHandler.Update)
			r.Delete("/books/{bookID}/reviews/{reviewID}", reviewHandler.Delete)

			r.Get("/cart", cartHandler.List)
			r.Post("/cart", cartHandler.Create)
			r.Delete("/cart", cartHandler.Flush)
			r.Get("/cart/{itemID}", cartHandler.Get)
			r.Patch("/cart/{itemID}", cartHandler.Update)
			r.Delete("/cart/{itemID}", cartHandler.Delete)

			r.Get("/addresses", addressHandler.List)
			r.Post("/addresses", addressHandler.Create)
			r.Get("/addresses/{addressID}", addressHandler.Get)
			r.Put("/addresses/{addressID}", addressHandler.Update)
			r.Delete("/addresses/{addressID}", addressHandler.Delete)

			r.Get("/orders", orderHandler.List)
			r.Post("/orders", orderHandler.Place)
			r.Get("/orders/{orderID}", orderHandler.Get)
			r.Patch("/orders/{orderID}", orderHandler.Update)
			r.Get("/orders/{orderID}/items", orderHandler.ListItems)
			r.Get("/orders/{orderID}/history", orderHandler.ListHistory)

			r.Get("/groups/{group}/users", groupHandler.List)
			r.Post("/groups/{group}/users", groupHandler.Add)
			r.Delete("/groups/{group}/users/{userID}", groupHandler.Remove)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
