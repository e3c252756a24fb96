package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common order validation errors.
var (
	ErrEmptyOrderID        = errors.New("order ID cannot be empty")
	ErrOrderUserMissing    = errors.New("order must reference a user")
	ErrOrderAddressMissing = errors.New("order must reference a delivery address")
	ErrEmptyCart           = errors.New("no item was found in the cart")
	ErrDelivererNotCrew    = errors.New("orders can only be assigned to a delivery crew member")
)

// Order is a placed purchase. Items and history rows hang off it; status
// changes are governed by the transition matrix in order_status.go and are
// always mirrored into OrderHistory.
type Order struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	DelivererID    *uuid.UUID `json:"deliverer_id,omitempty"`
	AddressID      uuid.UUID  `json:"address_id"`
	Status         OrderStatus `json:"status"`
	Total          float64    `json:"total"`
	WhenPlaced     time.Time  `json:"when_placed"`
	WhenLastUpdate time.Time  `json:"when_last_update"`

	// Read-side denormalizations.
	UserEmail      string `json:"-"`
	DelivererEmail string `json:"-"`
	AddressDisplay string `json:"-"`
}

// NewOrder creates a pending Order from a non-empty cart total.
func NewOrder(userID, addressID uuid.UUID, total float64) (*Order, error) {
	now := time.Now().UTC()
	order := &Order{
		ID:             uuid.New(),
		UserID:         userID,
		AddressID:      addressID,
		Status:         StatusPending,
		Total:          Round2(total),
		WhenPlaced:     now,
		WhenLastUpdate: now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate checks the Order's field invariants.
func (o *Order) Validate() error {
	if o.ID == uuid.Nil {
		return ErrEmptyOrderID
	}
	if o.UserID == uuid.Nil {
		return ErrOrderUserMissing
	}
	if o.AddressID == uuid.Nil {
		return ErrOrderAddressMissing
	}
	if _, err := ParseOrderStatus(string(o.Status)); err != nil {
		return err
	}
	return nil
}

// Touch bumps the last-update timestamp.
func (o *Order) Touch() {
	o.WhenLastUpdate = time.Now().UTC()
}

// OrderItem is a line on an order, priced at placement time from the cart.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	BookID    uuid.UUID `json:"book_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Price     float64   `json:"price"`

	// Read-side denormalizations.
	BookTitle  string `json:"-"`
	BookAuthor string `json:"-"`
}

// OrderItemFromCart copies a cart line onto an order.
func OrderItemFromCart(orderID uuid.UUID, item *CartItem) *OrderItem {
	return &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		BookID:    item.BookID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Price:     item.Price,
	}
}

// OrderHistory is an append-only audit record of an order's status changes.
type OrderHistory struct {
	ID          uuid.UUID   `json:"id"`
	OrderID     uuid.UUID   `json:"order_id"`
	Status      OrderStatus `json:"status"`
	PerformedBy *uuid.UUID  `json:"performed_by,omitempty"`
	Action      string      `json:"action"`
	Timestamp   time.Time   `json:"timestamp"`

	// Read-side denormalization.
	PerformedByEmail string `json:"-"`
}

// NewOrderHistory creates an audit row for the given order and status.
func NewOrderHistory(orderID uuid.UUID, status OrderStatus, performedBy *uuid.UUID, action string) *OrderHistory {
	return &OrderHistory{
		ID:          uuid.New(),
		OrderID:     orderID,
		Status:      status,
		PerformedBy: performedBy,
		Action:      action,
		Timestamp:   time.Now().UTC(),
	}
}
