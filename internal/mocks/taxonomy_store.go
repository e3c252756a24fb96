package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// MockTaxonomyStore implements store.TaxonomyStore for testing
type MockTaxonomyStore struct {
	ListFn      func(ctx context.Context, kind store.TaxonomyKind) ([]*domain.Taxonomy, error)
	GetByIDFn   func(ctx context.Context, kind store.TaxonomyKind, id uuid.UUID) (*domain.Taxonomy, error)
	GetBySlugFn func(ctx context.Context, kind store.TaxonomyKind, slug string) (*domain.Taxonomy, error)

	// Data for the default implementation.
	Entries map[store.TaxonomyKind][]*domain.Taxonomy
}

// NewMockTaxonomyStore creates a new mock store with initialized defaults
func NewMockTaxonomyStore() *MockTaxonomyStore {
	return &MockTaxonomyStore{
		Entries: make(map[store.TaxonomyKind][]*domain.Taxonomy),
	}
}

var _ store.TaxonomyStore = (*MockTaxonomyStore)(nil)

// List implements the TaxonomyStore interface
func (m *MockTaxonomyStore) List(ctx context.Context, kind store.TaxonomyKind) ([]*domain.Taxonomy, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, kind)
	}
	return m.Entries[kind], nil
}

// GetByID implements the TaxonomyStore interface
func (m *MockTaxonomyStore) GetByID(ctx context.Context, kind store.TaxonomyKind, id uuid.UUID) (*domain.Taxonomy, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, kind, id)
	}
	for _, entry := range m.Entries[kind] {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, store.ErrTaxonomyNotFound
}

// GetBySlug implements the TaxonomyStore interface
func (m *MockTaxonomyStore) GetBySlug(ctx context.Context, kind store.TaxonomyKind, slug string) (*domain.Taxonomy, error) {
	if m.GetBySlugFn != nil {
		return m.GetBySlugFn(ctx, kind, slug)
	}
	for _, entry := range m.Entries[kind] {
		if entry.Slug == slug {
			return entry, nil
		}
	}
	return nil, store.ErrTaxonomyNotFound
}
