package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/mocks"
)

type cartTestEnv struct {
	router *chi.Mux
	carts  *mocks.MockCartStore
	books  *mocks.MockBookStore

	owner *domain.User
	book  *domain.Book
	item  *domain.CartItem
}

func newCartTestEnv(t *testing.T) *cartTestEnv {
	t.Helper()

	env := &cartTestEnv{
		carts: mocks.NewMockCartStore(),
		books: mocks.NewMockBookStore(),
	}

	env.owner = &domain.User{ID: uuid.New(), Email: "owner@example.com", Role: domain.RoleCustomer}

	env.book = &domain.Book{
		ID:        uuid.New(),
		Title:     "The Master and Margarita",
		Author:    "Mikhail Bulgakov",
		BasePrice: 12.00,
		StockSlug: "in-stock",
	}
	env.books.Books[env.book.ID] = env.book

	env.item = &domain.CartItem{
		ID: uuid.New(), UserID: env.owner.ID, BookID: env.book.ID,
		Quantity: 1, UnitPrice: 12.00, Price: 12.00,
	}
	env.carts.ItemsByID[env.item.ID] = env.item

	handler := NewCartHandler(env.carts, env.books)
	env.router = chi.NewRouter()
	env.router.Get("/cart", handler.List)
	env.router.Post("/cart", handler.Create)
	env.router.Delete("/cart", handler.Flush)
	env.router.Get("/cart/{itemID}", handler.Get)
	env.router.Patch("/cart/{itemID}", handler.Update)
	env.router.Delete("/cart/{itemID}", handler.Delete)

	return env
}

func (env *cartTestEnv) doAs(t *testing.T, actor *domain.User, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, actor.ID)
	ctx = context.WithValue(ctx, shared.RoleContextKey, actor.Role)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req.WithContext(ctx))
	return w
}

func TestCartItemAccess(t *testing.T) {
	t.Parallel()

	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	manager := &domain.User{ID: uuid.New(), Role: domain.RoleManager}
	stranger := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer}

	tests := []struct {
		name       string
		actor      func(env *cartTestEnv) *domain.User
		method     string
		payload    interface{}
		wantStatus int
	}{
		{
			name:       "owner reads own item",
			actor:      func(env *cartTestEnv) *domain.User { return env.owner },
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "owner updates quantity",
			actor:      func(env *cartTestEnv) *domain.User { return env.owner },
			method:     http.MethodPatch,
			payload:    CartItemUpdateRequest{Quantity: 3},
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin updates any item",
			actor:      func(env *cartTestEnv) *domain.User { return admin },
			method:     http.MethodPatch,
			payload:    CartItemUpdateRequest{Quantity: 2},
			wantStatus: http.StatusOK,
		},
		{
			name:       "manager reads any item",
			actor:      func(env *cartTestEnv) *domain.User { return manager },
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "manager may not modify",
			actor:      func(env *cartTestEnv) *domain.User { return manager },
			method:     http.MethodPatch,
			payload:    CartItemUpdateRequest{Quantity: 2},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "manager may not delete",
			actor:      func(env *cartTestEnv) *domain.User { return manager },
			method:     http.MethodDelete,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "other customers see not found",
			actor:      func(env *cartTestEnv) *domain.User { return stranger },
			method:     http.MethodGet,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newCartTestEnv(t)
			w := env.doAs(t, tt.actor(env), tt.method, "/cart/"+env.item.ID.String(), tt.payload)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCartCreate(t *testing.T) {
	t.Parallel()

	t.Run("captures current selling price", func(t *testing.T) {
		t.Parallel()

		env := newCartTestEnv(t)
		env.book.Discount = 25

		buyer := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer}
		w := env.doAs(t, buyer, http.MethodPost, "/cart",
			CartItemRequest{BookID: env.book.ID, Quantity: 2})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp CartItemResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.InDelta(t, 9.00, resp.UnitPrice, 0.001)
		assert.InDelta(t, 18.00, resp.Price, 0.001)
	})

	t.Run("out of stock book is rejected", func(t *testing.T) {
		t.Parallel()

		env := newCartTestEnv(t)
		env.book.StockSlug = domain.StockOutOfStock

		w := env.doAs(t, env.owner, http.MethodPost, "/cart",
			CartItemRequest{BookID: env.book.ID, Quantity: 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("discontinued book is rejected", func(t *testing.T) {
		t.Parallel()

		env := newCartTestEnv(t)
		env.book.StockSlug = domain.StockDiscontinued

		w := env.doAs(t, env.owner, http.MethodPost, "/cart",
			CartItemRequest{BookID: env.book.ID, Quantity: 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		t.Parallel()

		env := newCartTestEnv(t)
		w := env.doAs(t, env.owner, http.MethodPost, "/cart",
			CartItemRequest{BookID: uuid.New(), Quantity: 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCartFlush(t *testing.T) {
	t.Parallel()

	t.Run("empties the caller's cart", func(t *testing.T) {
		t.Parallel()

		env := newCartTestEnv(t)
		w := env.doAs(t, env.owner, http.MethodDelete, "/cart", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, env.carts.ItemsByID)
	})

	t.Run("empty cart is a bad request", func(t *testing.T) {
		t.Parallel()

		env := newCartTestEnv(t)
		stranger := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer}
		w := env.doAs(t, stranger, http.MethodDelete, "/cart", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCartList_Scoping(t *testing.T) {
	t.Parallel()

	env := newCartTestEnv(t)
	other := &domain.CartItem{
		ID: uuid.New(), UserID: uuid.New(), BookID: env.book.ID,
		Quantity: 1, UnitPrice: 5.00, Price: 5.00,
	}
	env.carts.ItemsByID[other.ID] = other

	w := env.doAs(t, env.owner, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []CartItemResponse `json:"items"`
		Total int64              `json:"total"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, env.item.ID, resp.Items[0].ID)

	manager := &domain.User{ID: uuid.New(), Role: domain.RoleManager}
	w = env.doAs(t, manager, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Items, 2)
}