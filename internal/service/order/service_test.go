package order

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/mocks"
	"github.com/pagebound/bookstore-api/internal/store"
)

// fixture bundles a service over fresh mocks with a pass-through transaction
// runner, plus the seeded users and order most tests need.
type fixture struct {
	svc       *Service
	orders    *mocks.MockOrderStore
	carts     *mocks.MockCartStore
	addresses *mocks.MockAddressStore
	users     *mocks.MockUserStore

	customer  domain.User
	deliverer domain.User
	order     *domain.Order
}

func newFixture(t *testing.T, status domain.OrderStatus) *fixture {
	t.Helper()

	f := &fixture{
		orders:    mocks.NewMockOrderStore(),
		carts:     mocks.NewMockCartStore(),
		addresses: mocks.NewMockAddressStore(),
		users:     mocks.NewMockUserStore(),
	}
	f.svc = &Service{
		orders:    f.orders,
		carts:     f.carts,
		addresses: f.addresses,
		users:     f.users,
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return fn(ctx, (*sql.Tx)(nil))
		},
	}

	f.customer = domain.User{ID: uuid.New(), Email: "customer@example.com", Role: domain.RoleCustomer}
	f.deliverer = domain.User{ID: uuid.New(), Email: "crew@example.com", Role: domain.RoleDelivery}
	f.users.Users[f.customer.Email] = &f.customer
	f.users.Users[f.deliverer.Email] = &f.deliverer

	address := &domain.Address{ID: uuid.New(), UserID: f.customer.ID}
	f.addresses.Addresses[address.ID] = address

	f.order = &domain.Order{
		ID:        uuid.New(),
		UserID:    f.customer.ID,
		AddressID: address.ID,
		Status:    status,
		Total:     42.50,
	}
	f.orders.Orders[f.order.ID] = f.order

	return f
}

func strptr(s string) *string { return &s }

func TestUpdate_FieldPermissions(t *testing.T) {
	t.Parallel()

	delivererID := uuid.New()
	addressID := uuid.New()

	tests := []struct {
		name   string
		role   domain.Role
		req    UpdateRequest
		denied bool
	}{
		{"admin may set status", domain.RoleAdmin, UpdateRequest{Status: strptr("shipped")}, false},
		{"admin may set deliverer", domain.RoleAdmin, UpdateRequest{DelivererID: &delivererID}, false},
		{"manager may set status and deliverer", domain.RoleManager,
			UpdateRequest{Status: strptr("shipped"), DelivererID: &delivererID}, false},
		{"delivery may set status", domain.RoleDelivery, UpdateRequest{Status: strptr("delivered")}, false},
		{"delivery may not set deliverer", domain.RoleDelivery, UpdateRequest{DelivererID: &delivererID}, true},
		{"customer may not set status", domain.RoleCustomer, UpdateRequest{Status: strptr("shipped")}, true},
		{"customer may set address and intent", domain.RoleCustomer,
			UpdateRequest{AddressID: &addressID, Intent: strptr("cancellation")}, false},
		{"admin may not set address", domain.RoleAdmin, UpdateRequest{AddressID: &addressID}, true},
		{"manager may not set intent", domain.RoleManager, UpdateRequest{Intent: strptr("refund")}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := checkFieldPermissions(tt.role, tt.req)
			if tt.denied {
				var fpe *FieldPermissionError
				require.ErrorAs(t, err, &fpe)
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdate_FieldPermissionErrorListsFields(t *testing.T) {
	t.Parallel()

	addressID := uuid.New()
	err := checkFieldPermissions(domain.RoleDelivery, UpdateRequest{
		AddressID: &addressID,
		Intent:    strptr("refund"),
	})

	var fpe *FieldPermissionError
	require.ErrorAs(t, err, &fpe)
	assert.ElementsMatch(t, []string{FieldDeliveryAddress, FieldIntent}, fpe.Fields)
	assert.Contains(t, err.Error(), "delivery_address")
	assert.Contains(t, err.Error(), "intent")
}

func TestUpdate_StatusTransition(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	admin := Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	updated, err := f.svc.Update(context.Background(), admin, f.order.ID,
		UpdateRequest{Status: strptr("shipped")})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusShipped, updated.Status)
	assert.False(t, updated.WhenLastUpdate.IsZero())

	history := f.orders.History[f.order.ID]
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusShipped, history[0].Status)
	assert.Equal(t, "Status transitioned to Shipped.", history[0].Action)
	require.NotNil(t, history[0].PerformedBy)
	assert.Equal(t, admin.ID, *history[0].PerformedBy)
}

func TestUpdate_ForbiddenTransition(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusShipped)
	// Assign the order so the deliverer can see it at all.
	f.order.DelivererID = &f.deliverer.ID

	crew := Actor{ID: f.deliverer.ID, Role: domain.RoleDelivery}

	// shipped -> delivered is open to delivery crew...
	_, err := f.svc.Update(context.Background(), crew, f.order.ID,
		UpdateRequest{Status: strptr("delivered")})
	require.NoError(t, err)

	// ...but delivered -> under-review is not.
	_, err = f.svc.Update(context.Background(), crew, f.order.ID,
		UpdateRequest{Status: strptr("under-review")})
	assert.ErrorIs(t, err, domain.ErrTransitionForbidden)
}

func TestUpdate_UnknownTransition(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	admin := Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	_, err := f.svc.Update(context.Background(), admin, f.order.ID,
		UpdateRequest{Status: strptr("delivered")})
	assert.ErrorIs(t, err, domain.ErrTransitionUnknown)

	_, err = f.svc.Update(context.Background(), admin, f.order.ID,
		UpdateRequest{Status: strptr("warp-speed")})
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)

	// Nothing should have been recorded.
	assert.Empty(t, f.orders.History[f.order.ID])
}

func TestUpdate_NoOpStatusSkipsHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	admin := Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	updated, err := f.svc.Update(context.Background(), admin, f.order.ID,
		UpdateRequest{Status: strptr("pending")})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Empty(t, f.orders.History[f.order.ID])
}

func TestUpdate_DelivererAssignment(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	manager := Actor{ID: uuid.New(), Role: domain.RoleManager}

	updated, err := f.svc.Update(context.Background(), manager, f.order.ID,
		UpdateRequest{DelivererID: &f.deliverer.ID})
	require.NoError(t, err)

	require.NotNil(t, updated.DelivererID)
	assert.Equal(t, f.deliverer.ID, *updated.DelivererID)
	assert.Equal(t, domain.StatusShipped, updated.Status, "assignment on a pending order auto-ships it")

	history := f.orders.History[f.order.ID]
	require.Len(t, history, 1)
	assert.Equal(t, "Status transitioned to Shipped.", history[0].Action)
}

func TestUpdate_DelivererMustBeCrew(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	manager := Actor{ID: uuid.New(), Role: domain.RoleManager}

	_, err := f.svc.Update(context.Background(), manager, f.order.ID,
		UpdateRequest{DelivererID: &f.customer.ID})
	assert.ErrorIs(t, err, domain.ErrDelivererNotCrew)

	unknown := uuid.New()
	_, err = f.svc.Update(context.Background(), manager, f.order.ID,
		UpdateRequest{DelivererID: &unknown})
	assert.ErrorIs(t, err, domain.ErrDelivererNotCrew)
}

func TestUpdate_DelivererAssignmentKeepsExplicitStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	admin := Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	// The explicit status wins over the auto-requested "shipped".
	updated, err := f.svc.Update(context.Background(), admin, f.order.ID,
		UpdateRequest{DelivererID: &f.deliverer.ID, Status: strptr("under-review")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, updated.Status)
}

func TestUpdate_SameDelivererIsNoOp(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusUnderReview)
	f.order.DelivererID = &f.deliverer.ID
	manager := Actor{ID: uuid.New(), Role: domain.RoleManager}

	// Re-sending the assigned deliverer must not auto-ship the order.
	updated, err := f.svc.Update(context.Background(), manager, f.order.ID,
		UpdateRequest{DelivererID: &f.deliverer.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusUnderReview, updated.Status)
	assert.Empty(t, f.orders.History[f.order.ID])
}

func TestUpdate_AddressChange(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	customer := Actor{ID: f.customer.ID, Role: domain.RoleCustomer}

	newAddress := &domain.Address{ID: uuid.New(), UserID: f.customer.ID}
	f.addresses.Addresses[newAddress.ID] = newAddress

	updated, err := f.svc.Update(context.Background(), customer, f.order.ID,
		UpdateRequest{AddressID: &newAddress.ID})
	require.NoError(t, err)

	assert.Equal(t, newAddress.ID, updated.AddressID)
	assert.Equal(t, domain.StatusPending, updated.Status, "address change on a pending order keeps it pending")
	assert.Empty(t, f.orders.History[f.order.ID])
}

func TestUpdate_AddressChangeOnFailedOrderRequestsReview(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusFailed)
	customer := Actor{ID: f.customer.ID, Role: domain.RoleCustomer}

	newAddress := &domain.Address{ID: uuid.New(), UserID: f.customer.ID}
	f.addresses.Addresses[newAddress.ID] = newAddress

	updated, err := f.svc.Update(context.Background(), customer, f.order.ID,
		UpdateRequest{AddressID: &newAddress.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusUnderReview, updated.Status)
	history := f.orders.History[f.order.ID]
	require.Len(t, history, 1)
	assert.Equal(t, "Status transitioned to Under Review.", history[0].Action)
}

func TestUpdate_AddressChangeLockedAfterDispatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusShipped)
	customer := Actor{ID: f.customer.ID, Role: domain.RoleCustomer}

	newAddress := &domain.Address{ID: uuid.New(), UserID: f.customer.ID}
	f.addresses.Addresses[newAddress.ID] = newAddress

	_, err := f.svc.Update(context.Background(), customer, f.order.ID,
		UpdateRequest{AddressID: &newAddress.ID})
	assert.ErrorIs(t, err, ErrAddressLocked)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdate_SameAddressIsNoOp(t *testing.T) {
	t.Parallel()

	t.Run("failed order stays failed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, domain.StatusFailed)
		customer := Actor{ID: f.customer.ID, Role: domain.RoleCustomer}

		updated, err := f.svc.Update(context.Background(), customer, f.order.ID,
			UpdateRequest{AddressID: &f.order.AddressID})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusFailed, updated.Status)
		assert.Empty(t, f.orders.History[f.order.ID])
	})

	t.Run("no lock error after dispatch", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, domain.StatusShipped)
		customer := Actor{ID: f.customer.ID, Role: domain.RoleCustomer}

		updated, err := f.svc.Update(context.Background(), customer, f.order.ID,
			UpdateRequest{AddressID: &f.order.AddressID})
		require.NoError(t, err)
		assert.Equal(t, f.order.AddressID, updated.AddressID)
	})
}

func TestUpdate_AddressMustBelongToCustomer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	customer := Actor{ID: f.customer.ID, Role: domain.RoleCustomer}

	foreign := &domain.Address{ID: uuid.New(), UserID: uuid.New()}
	f.addresses.Addresses[foreign.ID] = foreign

	_, err := f.svc.Update(context.Background(), customer, f.order.ID,
		UpdateRequest{AddressID: &foreign.ID})
	assert.ErrorIs(t, err, ErrAddressNotOwned)
}

func TestUpdate_Intents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     domain.OrderStatus
		intent     string
		wantErr    error
		wantAction string
	}{
		{
			name:       "cancellation from pending",
			status:     domain.StatusPending,
			intent:     "cancellation",
			wantAction: "Customer requested cancellation. Status transitioned to Under Review.",
		},
		{
			name:       "cancellation from failed",
			status:     domain.StatusFailed,
			intent:     "cancellation",
			wantAction: "Customer requested cancellation. Status transitioned to Under Review.",
		},
		{
			name:       "refund from delivered",
			status:     domain.StatusDelivered,
			intent:     "refund",
			wantAction: "Customer requested refund. Status transitioned to Under Review.",
		},
		{
			name:    "refund from pending rejected",
			status:  domain.StatusPending,
			intent:  "refund",
			wantErr: domain.ErrIntentNotEligible,
		},
		{
			name:    "cancellation from shipped rejected",
			status:  domain.StatusShipped,
			intent:  "cancellation",
			wantErr: domain.ErrIntentNotEligible,
		},
		{
			name:    "unknown intent rejected",
			status:  domain.StatusPending,
			intent:  "exchange",
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.status)
			customer := Actor{ID: f.customer.ID, Role: domain.RoleCustomer}

			updated, err := f.svc.Update(context.Background(), customer, f.order.ID,
				UpdateRequest{Intent: strptr(tt.intent)})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.orders.History[f.order.ID])
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.StatusUnderReview, updated.Status)
			history := f.orders.History[f.order.ID]
			require.Len(t, history, 1)
			assert.Equal(t, tt.wantAction, history[0].Action)
		})
	}
}

func TestUpdate_Scoping(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)

	// A stranger customer gets not-found, never forbidden.
	stranger := Actor{ID: uuid.New(), Role: domain.RoleCustomer}
	_, err := f.svc.Update(context.Background(), stranger, f.order.ID,
		UpdateRequest{Intent: strptr("cancellation")})
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	// Unassigned delivery crew cannot see the order either.
	crew := Actor{ID: f.deliverer.ID, Role: domain.RoleDelivery}
	_, err = f.svc.Update(context.Background(), crew, f.order.ID,
		UpdateRequest{Status: strptr("shipped")})
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestUpdate_EmptyRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	admin := Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	_, err := f.svc.Update(context.Background(), admin, f.order.ID, UpdateRequest{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestGetOrder_Scoping(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)

	owner := Actor{ID: f.customer.ID, Role: domain.RoleCustomer}
	got, err := f.svc.GetOrder(context.Background(), owner, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, f.order.ID, got.ID)

	manager := Actor{ID: uuid.New(), Role: domain.RoleManager}
	_, err = f.svc.GetOrder(context.Background(), manager, f.order.ID)
	assert.NoError(t, err)

	stranger := Actor{ID: uuid.New(), Role: domain.RoleCustomer}
	_, err = f.svc.GetOrder(context.Background(), stranger, f.order.ID)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestPlaceOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)

	address := &domain.Address{ID: uuid.New(), UserID: f.customer.ID}
	f.addresses.Addresses[address.ID] = address

	itemA := &domain.CartItem{
		ID: uuid.New(), UserID: f.customer.ID, BookID: uuid.New(),
		Quantity: 2, UnitPrice: 12.00, Price: 24.00,
	}
	itemB := &domain.CartItem{
		ID: uuid.New(), UserID: f.customer.ID, BookID: uuid.New(),
		Quantity: 1, UnitPrice: 9.99, Price: 9.99,
	}
	f.carts.ItemsByID[itemA.ID] = itemA
	f.carts.ItemsByID[itemB.ID] = itemB

	placed, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, address.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, placed.Status)
	assert.InDelta(t, 33.99, placed.Total, 0.001)
	assert.Equal(t, address.ID, placed.AddressID)

	items := f.orders.Items[placed.ID]
	require.Len(t, items, 2)

	history := f.orders.History[placed.ID]
	require.Len(t, history, 1)
	assert.Equal(t, "Order placed.", history[0].Action)
	assert.Equal(t, domain.StatusPending, history[0].Status)

	remaining, err := f.carts.ListByUser(context.Background(), f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "cart must be flushed after ordering")
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	address := &domain.Address{ID: uuid.New(), UserID: f.customer.ID}
	f.addresses.Addresses[address.ID] = address

	_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, address.ID)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestPlaceOrder_ForeignAddress(t *testing.T) {
	t.Parallel()

	f := newFixture(t, domain.StatusPending)
	foreign := &domain.Address{ID: uuid.New(), UserID: uuid.New()}
	f.addresses.Addresses[foreign.ID] = foreign

	_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrAddressNotOwned)
}
