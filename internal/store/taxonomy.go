package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// TaxonomyKind names one of the slugged lookup tables. The kinds double as
// table names in the Postgres implementation.
type TaxonomyKind string

const (
	KindGenre       TaxonomyKind = "genres"
	KindStock       TaxonomyKind = "stocks"
	KindBookFormat  TaxonomyKind = "book_formats"
	KindOrderStatus TaxonomyKind = "order_statuses"
	KindCountry     TaxonomyKind = "countries"
)

// TaxonomyStore provides read access to the slugged lookup tables (genres,
// stocks, book formats, order statuses, countries). These are seeded by
// migration and read-only over the API.
type TaxonomyStore interface {
	// List returns all entries of the given kind ordered by title.
	List(ctx context.Context, kind TaxonomyKind) ([]*domain.Taxonomy, error)

	// GetByID retrieves a single entry.
	// Returns ErrTaxonomyNotFound if it does not exist.
	GetByID(ctx context.Context, kind TaxonomyKind, id uuid.UUID) (*domain.Taxonomy, error)

	// GetBySlug retrieves a single entry by its slug.
	// Returns ErrTaxonomyNotFound if it does not exist.
	GetBySlug(ctx context.Context, kind TaxonomyKind, slug string) (*domain.Taxonomy, error)
}
