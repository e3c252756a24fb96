package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// ReviewStore defines the interface for book review persistence.
type ReviewStore interface {
	// Create saves a new review.
	// Returns ErrReviewExists if the user has already reviewed the book.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review.
	// Returns ErrReviewNotFound if the review does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)

	// ListByBook returns a page of reviews for the given book, along with
	// the total match count before pagination.
	ListByBook(ctx context.Context, bookID uuid.UUID, params ReviewListParams) ([]*domain.Review, int64, error)

	// Update replaces the review's rating, title and comment.
	// Returns ErrReviewNotFound if the review does not exist.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review.
	// Returns ErrReviewNotFound if the review does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ReviewStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
