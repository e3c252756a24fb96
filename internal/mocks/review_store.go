package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// MockReviewStore implements store.ReviewStore for testing
type MockReviewStore struct {
	CreateFn     func(ctx context.Context, review *domain.Review) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByBookFn func(ctx context.Context, bookID uuid.UUID, params store.ReviewListParams) ([]*domain.Review, int64, error)
	UpdateFn     func(ctx context.Context, review *domain.Review) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	// Data for the default implementation.
	Reviews map[uuid.UUID]*domain.Review
}

// NewMockReviewStore creates a new mock store with initialized defaults
func NewMockReviewStore() *MockReviewStore {
	return &MockReviewStore{
		Reviews: make(map[uuid.UUID]*domain.Review),
	}
}

var _ store.ReviewStore = (*MockReviewStore)(nil)

// Create implements the ReviewStore interface
func (m *MockReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, review)
	}
	for _, existing := range m.Reviews {
		if existing.UserID == review.UserID && existing.BookID == review.BookID {
			return store.ErrReviewExists
		}
	}
	m.Reviews[review.ID] = review
	return nil
}

// GetByID implements the ReviewStore interface
func (m *MockReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if r, ok := m.Reviews[id]; ok {
		return r, nil
	}
	return nil, store.ErrReviewNotFound
}

// ListByBook implements the ReviewStore interface
func (m *MockReviewStore) ListByBook(ctx context.Context, bookID uuid.UUID, params store.ReviewListParams) ([]*domain.Review, int64, error) {
	if m.ListByBookFn != nil {
		return m.ListByBookFn(ctx, bookID, params)
	}
	reviews := make([]*domain.Review, 0)
	for _, r := range m.Reviews {
		if r.BookID == bookID {
			reviews = append(reviews, r)
		}
	}
	return reviews, int64(len(reviews)), nil
}

// Update implements the ReviewStore interface
func (m *MockReviewStore) Update(ctx context.Context, review *domain.Review) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, review)
	}
	if _, ok := m.Reviews[review.ID]; !ok {
		return store.ErrReviewNotFound
	}
	m.Reviews[review.ID] = review
	return nil
}

// Delete implements the ReviewStore interface
func (m *MockReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if _, ok := m.Reviews[id]; !ok {
		return store.ErrReviewNotFound
	}
	delete(m.Reviews, id)
	return nil
}

// WithTx implements the ReviewStore interface; the mock ignores transactions.
func (m *MockReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return m
}
