package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// MockBookStore implements store.BookStore for testing
type MockBookStore struct {
	CreateFn  func(ctx context.Context, book *domain.Book) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	ListFn    func(ctx context.Context, params store.BookListParams) ([]*domain.Book, int64, error)
	UpdateFn  func(ctx context.Context, book *domain.Book) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	// Data for the default implementation.
	Books map[uuid.UUID]*domain.Book
}

// NewMockBookStore creates a new mock store with initialized defaults
func NewMockBookStore() *MockBookStore {
	return &MockBookStore{
		Books: make(map[uuid.UUID]*domain.Book),
	}
}

var _ store.BookStore = (*MockBookStore)(nil)

// Create implements the BookStore interface
func (m *MockBookStore) Create(ctx context.Context, book *domain.Book) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, book)
	}
	for _, existing := range m.Books {
		if existing.ISBN == book.ISBN {
			return store.ErrISBNExists
		}
	}
	m.Books[book.ID] = book
	return nil
}

// GetByID implements the BookStore interface
func (m *MockBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if b, ok := m.Books[id]; ok {
		return b, nil
	}
	return nil, store.ErrBookNotFound
}

// List implements the BookStore interface
func (m *MockBookStore) List(ctx context.Context, params store.BookListParams) ([]*domain.Book, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	books := make([]*domain.Book, 0, len(m.Books))
	for _, b := range m.Books {
		books = append(books, b)
	}
	return books, int64(len(books)), nil
}

// Update implements the BookStore interface
func (m *MockBookStore) Update(ctx context.Context, book *domain.Book) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, book)
	}
	if _, ok := m.Books[book.ID]; !ok {
		return store.ErrBookNotFound
	}
	m.Books[book.ID] = book
	return nil
}

// Delete implements the BookStore interface
func (m *MockBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if _, ok := m.Books[id]; !ok {
		return store.ErrBookNotFound
	}
	delete(m.Books, id)
	return nil
}

// WithTx implements the BookStore interface; the mock ignores transactions.
func (m *MockBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return m
}
