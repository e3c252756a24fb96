package api

import (
	"bytes"
	"context"
	"database/sql"
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
	"github.com/pagebound/bookstore-api/internal/service/order"
	"github.com/pagebound/bookstore-api/internal/store"
)

// orderTestEnv bundles an order handler mounted on a router with the mock
// stores behind it.
type orderTestEnv struct {
	router    *chi.Mux
	orders    *mocks.MockOrderStore
	carts     *mocks.MockCartStore
	addresses *mocks.MockAddressStore
	users     *mocks.MockUserStore

	customer  *domain.User
	deliverer *domain.User
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()

	env := &orderTestEnv{
		orders:    mocks.NewMockOrderStore(),
		carts:     mocks.NewMockCartStore(),
		addresses: mocks.NewMockAddressStore(),
		users:     mocks.NewMockUserStore(),
	}

	env.customer = &domain.User{ID: uuid.New(), Email: "customer@example.com", Role: domain.RoleCustomer}
	env.deliverer = &domain.User{ID: uuid.New(), Email: "crew@example.com", Role: domain.RoleDelivery}
	env.users.Users[env.customer.Email] = env.customer
	env.users.Users[env.deliverer.Email] = env.deliverer

	runTx := func(ctx context.Context, fn store.TxFn) error {
		return fn(ctx, (*sql.Tx)(nil))
	}
	svc := order.NewServiceWithRunner(runTx, env.orders, env.carts, env.addresses, env.users)
	handler := NewOrderHandler(svc, env.orders)

	env.router = chi.NewRouter()
	env.router.Get("/orders", handler.List)
	env.router.Post("/orders", handler.Place)
	env.router.Get("/orders/{orderID}", handler.Get)
	env.router.Patch("/orders/{orderID}", handler.Update)
	env.router.Get("/orders/{orderID}/items", handler.ListItems)
	env.router.Get("/orders/{orderID}/history", handler.ListHistory)

	return env
}

// seedOrder stores an order with the given owner and status.
func (env *orderTestEnv) seedOrder(owner uuid.UUID, status domain.OrderStatus) *domain.Order {
	o := &domain.Order{
		ID:        uuid.New(),
		UserID:    owner,
		AddressID: uuid.New(),
		Status:    status,
		Total:     25.00,
	}
	env.orders.Orders[o.ID] = o
	return o
}

// doAs performs a request with the given actor injected as the auth
// middleware would.
func (env *orderTestEnv) doAs(t *testing.T, actor *domain.User, method, path string, payload interface{}) *httptest.ResponseRecorder {
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

func TestOrderList_RoleScoping(t *testing.T) {
	t.Parallel()

	env := newOrderTestEnv(t)
	admin := &domain.User{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin}

	mine := env.seedOrder(env.customer.ID, domain.StatusPending)
	env.seedOrder(uuid.New(), domain.StatusPending)
	assigned := env.seedOrder(uuid.New(), domain.StatusShipped)
	assigned.DelivererID = &env.deliverer.ID

	decode := func(w *httptest.ResponseRecorder) []OrderResponse {
		var resp struct {
			Items []OrderResponse `json:"items"`
			Total int64           `json:"total"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		return resp.Items
	}

	w := env.doAs(t, env.customer, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(w)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	w = env.doAs(t, env.deliverer, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items = decode(w)
	require.Len(t, items, 1)
	assert.Equal(t, assigned.ID, items[0].ID)

	w = env.doAs(t, admin, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(w), 3)
}

func TestOrderGet_HidesForeignOrders(t *testing.T) {
	t.Parallel()

	env := newOrderTestEnv(t)
	foreign := env.seedOrder(uuid.New(), domain.StatusPending)

	w := env.doAs(t, env.customer, http.MethodGet, "/orders/"+foreign.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderPatch_StatusCodes(t *testing.T) {
	t.Parallel()

	manager := &domain.User{ID: uuid.New(), Email: "manager@example.com", Role: domain.RoleManager}

	tests := []struct {
		name       string
		actor      func(env *orderTestEnv) *domain.User
		status     domain.OrderStatus
		payload    map[string]interface{}
		wantStatus int
	}{
		{
			name:       "manager ships pending order",
			actor:      func(env *orderTestEnv) *domain.User { return manager },
			status:     domain.StatusPending,
			payload:    map[string]interface{}{"status": "shipped"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "customer may not set status",
			actor:      func(env *orderTestEnv) *domain.User { return env.customer },
			status:     domain.StatusPending,
			payload:    map[string]interface{}{"status": "shipped"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown transition is a bad request",
			actor:      func(env *orderTestEnv) *domain.User { return manager },
			status:     domain.StatusPending,
			payload:    map[string]interface{}{"status": "delivered"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown status slug is a bad request",
			actor:      func(env *orderTestEnv) *domain.User { return manager },
			status:     domain.StatusPending,
			payload:    map[string]interface{}{"status": "teleported"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "customer cancellation intent",
			actor:      func(env *orderTestEnv) *domain.User { return env.customer },
			status:     domain.StatusPending,
			payload:    map[string]interface{}{"intent": "cancellation"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "refund intent on pending order rejected",
			actor:      func(env *orderTestEnv) *domain.User { return env.customer },
			status:     domain.StatusPending,
			payload:    map[string]interface{}{"intent": "refund"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty update is a bad request",
			actor:      func(env *orderTestEnv) *domain.User { return env.customer },
			status:     domain.StatusPending,
			payload:    map[string]interface{}{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newOrderTestEnv(t)
			o := env.seedOrder(env.customer.ID, tt.status)

			w := env.doAs(t, tt.actor(env), http.MethodPatch, "/orders/"+o.ID.String(), tt.payload)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestOrderPatch_IntentMovesToUnderReview(t *testing.T) {
	t.Parallel()

	env := newOrderTestEnv(t)
	o := env.seedOrder(env.customer.ID, domain.StatusPending)

	w := env.doAs(t, env.customer, http.MethodPatch, "/orders/"+o.ID.String(),
		map[string]interface{}{"intent": "cancellation"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp OrderResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "under-review", resp.Status)

	history := env.orders.History[o.ID]
	require.Len(t, history, 1)
	assert.Equal(t, "Customer requested cancellation. Status transitioned to Under Review.", history[0].Action)
}

func TestOrderItems_DeliveryForbidden(t *testing.T) {
	t.Parallel()

	env := newOrderTestEnv(t)
	o := env.seedOrder(uuid.New(), domain.StatusShipped)
	o.DelivererID = &env.deliverer.ID

	w := env.doAs(t, env.deliverer, http.MethodGet, "/orders/"+o.ID.String()+"/items", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The same order remains visible to the crew member.
	w = env.doAs(t, env.deliverer, http.MethodGet, "/orders/"+o.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceOrder_Endpoint(t *testing.T) {
	t.Parallel()

	t.Run("empty cart", func(t *testing.T) {
		t.Parallel()

		env := newOrderTestEnv(t)
		address := &domain.Address{ID: uuid.New(), UserID: env.customer.ID}
		env.addresses.Addresses[address.ID] = address

		w := env.doAs(t, env.customer, http.MethodPost, "/orders",
			map[string]interface{}{"delivery_address": address.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("successful placement", func(t *testing.T) {
		t.Parallel()

		env := newOrderTestEnv(t)
		address := &domain.Address{ID: uuid.New(), UserID: env.customer.ID}
		env.addresses.Addresses[address.ID] = address

		item := &domain.CartItem{
			ID: uuid.New(), UserID: env.customer.ID, BookID: uuid.New(),
			Quantity: 3, UnitPrice: 8.00, Price: 24.00,
		}
		env.carts.ItemsByID[item.ID] = item

		w := env.doAs(t, env.customer, http.MethodPost, "/orders",
			map[string]interface{}{"delivery_address": address.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp OrderResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "pending", resp.Status)
		assert.InDelta(t, 24.00, resp.Total, 0.001)
	})

	t.Run("foreign address", func(t *testing.T) {
		t.Parallel()

		env := newOrderTestEnv(t)
		foreign := &domain.Address{ID: uuid.New(), UserID: uuid.New()}
		env.addresses.Addresses[foreign.ID] = foreign

		w := env.doAs(t, env.customer, http.MethodPost, "/orders",
			map[string]interface{}{"delivery_address": foreign.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
