package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// AddressStore defines the interface for delivery address persistence.
type AddressStore interface {
	// Create saves a new address.
	// Returns ErrAddressExists if an identical address is already on file.
	Create(ctx context.Context, address *domain.Address) error

	// GetByID retrieves an address.
	// Returns ErrAddressNotFound if the address does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Address, error)

	// List returns a page of addresses matching the given parameters, along
	// with the total match count before pagination.
	List(ctx context.Context, params AddressListParams) ([]*domain.Address, int64, error)

	// Update replaces the address's fields.
	// Returns ErrAddressNotFound if the address does not exist.
	Update(ctx context.Context, address *domain.Address) error

	// Delete removes an address.
	// Returns ErrAddressNotFound if the address does not exist and
	// ErrDeleteFailed when orders still reference it.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new AddressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AddressStore
}
