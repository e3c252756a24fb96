package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// CartStore defines the interface for shopping cart persistence.
type CartStore interface {
	// Create adds a book to a user's cart.
	// Returns ErrCartItemExists if the book is already in the cart.
	Create(ctx context.Context, item *domain.CartItem) error

	// GetByID retrieves a cart item.
	// Returns ErrCartItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error)

	// List returns a page of cart items matching the given parameters,
	// along with the total match count before pagination.
	List(ctx context.Context, params CartListParams) ([]*domain.CartItem, int64, error)

	// ListByUser returns every cart item owned by the user, unpaginated.
	// Used when placing an order from the full cart.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)

	// Update persists the item's quantity and recomputed price.
	// Returns ErrCartItemNotFound if the item does not exist.
	Update(ctx context.Context, item *domain.CartItem) error

	// Delete removes a single cart item.
	// Returns ErrCartItemNotFound if the item does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Flush removes every cart item owned by the user and reports how many
	// rows were deleted.
	Flush(ctx context.Context, userID uuid.UUID) (int64, error)

	// WithTx returns a new CartStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CartStore
}
