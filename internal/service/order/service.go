// Package order implements order placement and the role-guarded order update
// pipeline: field permissions, deliverer assignment, address changes, customer
// intents and the status transition matrix, all applied in one transaction
// and mirrored into the order's audit history.
package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/platform/logger"
	"github.com/pagebound/bookstore-api/internal/store"
)

// Update field names as they appear in PATCH bodies.
const (
	FieldStatus          = "status"
	FieldDeliverer       = "deliverer"
	FieldDeliveryAddress = "delivery_address"
	FieldIntent          = "intent"
)

// allowedFields lists which update fields each role may set.
var allowedFields = map[domain.Role]map[string]bool{
	domain.RoleAdmin:    {FieldStatus: true, FieldDeliverer: true},
	domain.RoleManager:  {FieldStatus: true, FieldDeliverer: true},
	domain.RoleDelivery: {FieldStatus: true},
	domain.RoleCustomer: {FieldDeliveryAddress: true, FieldIntent: true},
}

// Actor identifies who is performing an order operation.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

// canView reports whether the actor may see the order at all. Staff see
// everything, delivery crew their assignments, customers their own orders.
func (a Actor) canView(o *domain.Order) bool {
	switch a.Role {
	case domain.RoleAdmin, domain.RoleManager:
		return true
	case domain.RoleDelivery:
		return o.DelivererID != nil && *o.DelivererID == a.ID
	case domain.RoleCustomer:
		return o.UserID == a.ID
	default:
		return false
	}
}

// UpdateRequest carries the fields of a PATCH /orders/{id} body. Nil means
// the field was absent.
type UpdateRequest struct {
	Status      *string
	DelivererID *uuid.UUID
	AddressID   *uuid.UUID
	Intent      *string
}

// Service coordinates order placement and updates across the order, cart,
// address and user stores.
type Service struct {
	orders    store.OrderStore
	carts     store.CartStore
	addresses store.AddressStore
	users     store.UserStore

	// runTx wraps store.RunInTransaction; tests substitute a pass-through.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewService creates an order service over the given stores. The database
// handle is used to open the transactions the operations run in.
func NewService(
	db *sql.DB,
	orders store.OrderStore,
	carts store.CartStore,
	addresses store.AddressStore,
	users store.UserStore,
) *Service {
	return NewServiceWithRunner(
		func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		orders, carts, addresses, users,
	)
}

// NewServiceWithRunner creates an order service with a custom transaction
// runner. Tests substitute a runner that invokes the function directly.
func NewServiceWithRunner(
	runTx func(ctx context.Context, fn store.TxFn) error,
	orders store.OrderStore,
	carts store.CartStore,
	addresses store.AddressStore,
	users store.UserStore,
) *Service {
	return &Service{
		orders:    orders,
		carts:     carts,
		addresses: addresses,
		users:     users,
		runTx:     runTx,
	}
}

// PlaceOrder turns the user's entire cart into a pending order: it totals the
// cart, writes the order with its line items and the opening audit row, and
// flushes the cart, all in one transaction. The delivery address must belong
// to the ordering user and the cart must not be empty.
func (s *Service) PlaceOrder(ctx context.Context, userID, addressID uuid.UUID) (*domain.Order, error) {
	log := logger.FromContext(ctx)

	address, err := s.addresses.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, ErrAddressNotOwned)
	}

	var orderID uuid.UUID
	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		carts := s.carts.WithTx(tx)
		orders := s.orders.WithTx(tx)

		items, err := carts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		var total float64
		orderItems := make([]*domain.OrderItem, 0, len(items))
		for _, item := range items {
			total += item.Price
		}

		order, err := domain.NewOrder(userID, addressID, total)
		if err != nil {
			return err
		}
		for _, item := range items {
			orderItems = append(orderItems, domain.OrderItemFromCart(order.ID, item))
		}

		if err := orders.Create(ctx, order); err != nil {
			return err
		}
		if err := orders.CreateItems(ctx, orderItems); err != nil {
			return err
		}

		opening := domain.NewOrderHistory(order.ID, domain.StatusPending, &userID, "Order placed.")
		if err := orders.CreateHistory(ctx, opening); err != nil {
			return err
		}

		if _, err := carts.Flush(ctx, userID); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("order placed",
		"order_id", orderID,
		"user_id", userID)

	return s.orders.GetByID(ctx, orderID)
}

// GetOrder fetches an order the actor is allowed to see. Orders outside the
// actor's scope are reported as not found rather than forbidden, so their
// existence is not leaked.
func (s *Service) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(order) {
		return nil, store.ErrOrderNotFound
	}
	return order, nil
}

// Update applies a PATCH to an order under the role rules. The steps run in
// a fixed sequence: field permissions, deliverer assignment, address change,
// intent, then the status transition. Deliverer assignment on a pending or
// under-review order requests "shipped"; an address change on a failed order
// and any accepted intent request "under-review". The requested transition is
// validated against the matrix with the actor's role, and an accepted
// transition appends an audit row. A status, deliverer or address equal to
// the current one is a no-op. Everything runs in one transaction.
func (s *Service) Update(ctx context.Context, actor Actor, orderID uuid.UUID, req UpdateRequest) (*domain.Order, error) {
	if err := checkFieldPermissions(actor.Role, req); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		orders := s.orders.WithTx(tx)

		order, err := orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !actor.canView(order) {
			return store.ErrOrderNotFound
		}

		var requested domain.OrderStatus
		if req.Status != nil {
			requested, err = domain.ParseOrderStatus(*req.Status)
			if err != nil {
				return err
			}
		}

		var historyAction string
		changed := false

		// Re-sending the current deliverer is a no-op.
		if req.DelivererID != nil &&
			(order.DelivererID == nil || *order.DelivererID != *req.DelivererID) {
			deliverer, err := s.users.WithTx(tx).GetByID(ctx, *req.DelivererID)
			if err != nil {
				if store.IsNotFoundError(err) {
					return domain.ErrDelivererNotCrew
				}
				return err
			}
			if deliverer.Role != domain.RoleDelivery {
				return domain.ErrDelivererNotCrew
			}
			order.DelivererID = req.DelivererID
			changed = true

			// Assignment implies dispatch unless a status was requested
			// explicitly.
			if requested == "" &&
				(order.Status == domain.StatusPending || order.Status == domain.StatusUnderReview) {
				requested = domain.StatusShipped
			}
		}

		// Re-sending the current address is a no-op.
		if req.AddressID != nil && *req.AddressID != order.AddressID {
			if order.Status != domain.StatusPending && order.Status != domain.StatusFailed {
				return fmt.Errorf("%w: %w", domain.ErrValidation, ErrAddressLocked)
			}
			address, err := s.addresses.WithTx(tx).GetByID(ctx, *req.AddressID)
			if err != nil {
				return err
			}
			if address.UserID != order.UserID {
				return fmt.Errorf("%w: %w", domain.ErrValidation, ErrAddressNotOwned)
			}
			order.AddressID = *req.AddressID
			changed = true

			// Fixing the address of a failed order puts it back in front
			// of the staff.
			if order.Status == domain.StatusFailed && requested == "" {
				requested = domain.StatusUnderReview
			}
		}

		if req.Intent != nil {
			intent, err := domain.ParseIntent(*req.Intent)
			if err != nil {
				return err
			}
			if !intent.EligibleFor(order.Status) {
				return fmt.Errorf("%w: %s not available while %s",
					domain.ErrIntentNotEligible, intent, order.Status)
			}
			requested = domain.StatusUnderReview
			historyAction = fmt.Sprintf(
				"Customer requested %s. Status transitioned to Under Review.", intent)
		}

		if requested != "" && requested != order.Status {
			if err := order.Status.TransitionAllowed(requested, actor.Role); err != nil {
				return err
			}
			if historyAction == "" {
				historyAction = fmt.Sprintf("Status transitioned to %s.", requested.Title())
			}
			order.Status = requested
			changed = true
		} else {
			// Same-status request is a no-op: no validation, no history.
			historyAction = ""
		}

		if !changed {
			if req.Status == nil && req.DelivererID == nil &&
				req.AddressID == nil && req.Intent == nil {
				return fmt.Errorf("%w: %w", domain.ErrValidation, ErrNothingToUpdate)
			}
			return nil
		}

		order.Touch()
		if err := orders.Update(ctx, order); err != nil {
			return err
		}

		if historyAction != "" {
			entry := domain.NewOrderHistory(order.ID, order.Status, &actor.ID, historyAction)
			if err := orders.CreateHistory(ctx, entry); err != nil {
				return err
			}
		}

		log.Info("order updated",
			"order_id", order.ID,
			"actor_id", actor.ID,
			"actor_role", actor.Role,
			"status", order.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orders.GetByID(ctx, orderID)
}

// checkFieldPermissions rejects any provided field the role may not set.
func checkFieldPermissions(role domain.Role, req UpdateRequest) error {
	allowed := allowedFields[role]

	var denied []string
	if req.Status != nil && !allowed[FieldStatus] {
		denied = append(denied, FieldStatus)
	}
	if req.DelivererID != nil && !allowed[FieldDeliverer] {
		denied = append(denied, FieldDeliverer)
	}
	if req.AddressID != nil && !allowed[FieldDeliveryAddress] {
		denied = append(denied, FieldDeliveryAddress)
	}
	if req.Intent != nil && !allowed[FieldIntent] {
		denied = append(denied, FieldIntent)
	}

	if len(denied) > 0 {
		return &FieldPermissionError{Role: role, Fields: denied}
	}
	return nil
}
