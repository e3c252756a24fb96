package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// MockAddressStore implements store.AddressStore for testing
type MockAddressStore struct {
	CreateFn  func(ctx context.Context, address *domain.Address) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Address, error)
	ListFn    func(ctx context.Context, params store.AddressListParams) ([]*domain.Address, int64, error)
	UpdateFn  func(ctx context.Context, address *domain.Address) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	// Data for the default implementation.
	Addresses map[uuid.UUID]*domain.Address
}

// NewMockAddressStore creates a new mock store with initialized defaults
func NewMockAddressStore() *MockAddressStore {
	return &MockAddressStore{
		Addresses: make(map[uuid.UUID]*domain.Address),
	}
}

var _ store.AddressStore = (*MockAddressStore)(nil)

// Create implements the AddressStore interface
func (m *MockAddressStore) Create(ctx context.Context, address *domain.Address) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, address)
	}
	m.Addresses[address.ID] = address
	return nil
}

// GetByID implements the AddressStore interface
func (m *MockAddressStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if a, ok := m.Addresses[id]; ok {
		return a, nil
	}
	return nil, store.ErrAddressNotFound
}

// List implements the AddressStore interface
func (m *MockAddressStore) List(ctx context.Context, params store.AddressListParams) ([]*domain.Address, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	addresses := make([]*domain.Address, 0)
	for _, a := range m.Addresses {
		if params.UserID != nil && a.UserID != *params.UserID {
			continue
		}
		addresses = append(addresses, a)
	}
	return addresses, int64(len(addresses)), nil
}

// Update implements the AddressStore interface
func (m *MockAddressStore) Update(ctx context.Context, address *domain.Address) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, address)
	}
	if _, ok := m.Addresses[address.ID]; !ok {
		return store.ErrAddressNotFound
	}
	m.Addresses[address.ID] = address
	return nil
}

// Delete implements the AddressStore interface
func (m *MockAddressStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if _, ok := m.Addresses[id]; !ok {
		return store.ErrAddressNotFound
	}
	delete(m.Addresses, id)
	return nil
}

// WithTx implements the AddressStore interface; the mock ignores transactions.
func (m *MockAddressStore) WithTx(tx *sql.Tx) store.AddressStore {
	return m
}
