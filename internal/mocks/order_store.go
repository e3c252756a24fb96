package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// MockOrderStore implements store.OrderStore for testing
type MockOrderStore struct {
	CreateFn        func(ctx context.Context, order *domain.Order) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListFn          func(ctx context.Context, params store.OrderListParams) ([]*domain.Order, int64, error)
	UpdateFn        func(ctx context.Context, order *domain.Order) error
	CreateItemsFn   func(ctx context.Context, items []*domain.OrderItem) error
	ListItemsFn     func(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
	CreateHistoryFn func(ctx context.Context, entry *domain.OrderHistory) error
	ListHistoryFn   func(ctx context.Context, orderID uuid.UUID, params store.HistoryListParams) ([]*domain.OrderHistory, int64, error)

	// Data for the default implementation.
	Orders  map[uuid.UUID]*domain.Order
	Items   map[uuid.UUID][]*domain.OrderItem
	History map[uuid.UUID][]*domain.OrderHistory
}

// NewMockOrderStore creates a new mock store with initialized defaults
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		Orders:  make(map[uuid.UUID]*domain.Order),
		Items:   make(map[uuid.UUID][]*domain.OrderItem),
		History: make(map[uuid.UUID][]*domain.OrderHistory),
	}
}

var _ store.OrderStore = (*MockOrderStore)(nil)

// Create implements the OrderStore interface
func (m *MockOrderStore) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, order)
	}
	m.Orders[order.ID] = order
	return nil
}

// GetByID implements the OrderStore interface
func (m *MockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if o, ok := m.Orders[id]; ok {
		return o, nil
	}
	return nil, store.ErrOrderNotFound
}

// List implements the OrderStore interface
func (m *MockOrderStore) List(ctx context.Context, params store.OrderListParams) ([]*domain.Order, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	orders := make([]*domain.Order, 0, len(m.Orders))
	for _, o := range m.Orders {
		if params.UserID != nil && o.UserID != *params.UserID {
			continue
		}
		if params.DelivererID != nil &&
			(o.DelivererID == nil || *o.DelivererID != *params.DelivererID) {
			continue
		}
		orders = append(orders, o)
	}
	return orders, int64(len(orders)), nil
}

// Update implements the OrderStore interface
func (m *MockOrderStore) Update(ctx context.Context, order *domain.Order) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, order)
	}
	if _, ok := m.Orders[order.ID]; !ok {
		return store.ErrOrderNotFound
	}
	m.Orders[order.ID] = order
	return nil
}

// CreateItems implements the OrderStore interface
func (m *MockOrderStore) CreateItems(ctx context.Context, items []*domain.OrderItem) error {
	if m.CreateItemsFn != nil {
		return m.CreateItemsFn(ctx, items)
	}
	for _, item := range items {
		m.Items[item.OrderID] = append(m.Items[item.OrderID], item)
	}
	return nil
}

// ListItems implements the OrderStore interface
func (m *MockOrderStore) ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	if m.ListItemsFn != nil {
		return m.ListItemsFn(ctx, orderID)
	}
	return m.Items[orderID], nil
}

// CreateHistory implements the OrderStore interface
func (m *MockOrderStore) CreateHistory(ctx context.Context, entry *domain.OrderHistory) error {
	if m.CreateHistoryFn != nil {
		return m.CreateHistoryFn(ctx, entry)
	}
	m.History[entry.OrderID] = append(m.History[entry.OrderID], entry)
	return nil
}

// ListHistory implements the OrderStore interface
func (m *MockOrderStore) ListHistory(ctx context.Context, orderID uuid.UUID, params store.HistoryListParams) ([]*domain.OrderHistory, int64, error) {
	if m.ListHistoryFn != nil {
		return m.ListHistoryFn(ctx, orderID, params)
	}
	entries := m.History[orderID]
	return entries, int64(len(entries)), nil
}

// WithTx implements the OrderStore interface; the mock ignores transactions.
func (m *MockOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return m
}
