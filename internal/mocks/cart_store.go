package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// MockCartStore implements store.CartStore for testing
type MockCartStore struct {
	CreateFn     func(ctx context.Context, item *domain.CartItem) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.CartItem, error)
	ListFn       func(ctx context.Context, params store.CartListParams) ([]*domain.CartItem, int64, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	UpdateFn     func(ctx context.Context, item *domain.CartItem) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error
	FlushFn      func(ctx context.Context, userID uuid.UUID) (int64, error)

	// Data for the default implementation.
	ItemsByID map[uuid.UUID]*domain.CartItem
}

// NewMockCartStore creates a new mock store with initialized defaults
func NewMockCartStore() *MockCartStore {
	return &MockCartStore{
		ItemsByID: make(map[uuid.UUID]*domain.CartItem),
	}
}

var _ store.CartStore = (*MockCartStore)(nil)

// Create implements the CartStore interface
func (m *MockCartStore) Create(ctx context.Context, item *domain.CartItem) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, item)
	}
	for _, existing := range m.ItemsByID {
		if existing.UserID == item.UserID && existing.BookID == item.BookID {
			return store.ErrCartItemExists
		}
	}
	m.ItemsByID[item.ID] = item
	return nil
}

// GetByID implements the CartStore interface
func (m *MockCartStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if item, ok := m.ItemsByID[id]; ok {
		return item, nil
	}
	return nil, store.ErrCartItemNotFound
}

// List implements the CartStore interface
func (m *MockCartStore) List(ctx context.Context, params store.CartListParams) ([]*domain.CartItem, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	items := make([]*domain.CartItem, 0)
	for _, item := range m.ItemsByID {
		if params.UserID != nil && item.UserID != *params.UserID {
			continue
		}
		items = append(items, item)
	}
	return items, int64(len(items)), nil
}

// ListByUser implements the CartStore interface
func (m *MockCartStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	items := make([]*domain.CartItem, 0)
	for _, item := range m.ItemsByID {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

// Update implements the CartStore interface
func (m *MockCartStore) Update(ctx context.Context, item *domain.CartItem) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, item)
	}
	if _, ok := m.ItemsByID[item.ID]; !ok {
		return store.ErrCartItemNotFound
	}
	m.ItemsByID[item.ID] = item
	return nil
}

// Delete implements the CartStore interface
func (m *MockCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if _, ok := m.ItemsByID[id]; !ok {
		return store.ErrCartItemNotFound
	}
	delete(m.ItemsByID, id)
	return nil
}

// Flush implements the CartStore interface
func (m *MockCartStore) Flush(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.FlushFn != nil {
		return m.FlushFn(ctx, userID)
	}
	var deleted int64
	for id, item := range m.ItemsByID {
		if item.UserID == userID {
			delete(m.ItemsByID, id)
			deleted++
		}
	}
	return deleted, nil
}

// WithTx implements the CartStore interface; the mock ignores transactions.
func (m *MockCartStore) WithTx(tx *sql.Tx) store.CartStore {
	return m
}
