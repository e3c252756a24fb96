package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// OrderStore defines the interface for order persistence. Orders are never
// hard-deleted; terminal states are reached through status transitions.
type OrderStore interface {
	// Create saves a new order row. Items and history are written through
	// CreateItems and CreateHistory, typically in the same transaction.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its denormalized read fields.
	// Returns ErrOrderNotFound if the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// List returns a page of orders matching the given parameters, along
	// with the total match count before pagination.
	List(ctx context.Context, params OrderListParams) ([]*domain.Order, int64, error)

	// Update persists the order's status, deliverer, address and
	// when_last_update fields.
	// Returns ErrOrderNotFound if the order does not exist.
	Update(ctx context.Context, order *domain.Order) error

	// CreateItems saves the order's line items.
	CreateItems(ctx context.Context, items []*domain.OrderItem) error

	// ListItems returns the order's line items with book titles attached.
	ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)

	// CreateHistory appends an audit row to the order's history.
	CreateHistory(ctx context.Context, entry *domain.OrderHistory) error

	// ListHistory returns a page of the order's audit rows, oldest first,
	// along with the total match count before pagination.
	ListHistory(ctx context.Context, orderID uuid.UUID, params HistoryListParams) ([]*domain.OrderHistory, int64, error)

	// WithTx returns a new OrderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) OrderStore
}
