package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// BookStore defines the interface for book catalogue persistence. Reads
// populate the derived fields (price, average rating, taxonomy titles)
// computed in SQL.
type BookStore interface {
	// Create saves a new book.
	// Returns ErrISBNExists when the ISBN is already catalogued and
	// ErrEditionExists when the same edition already exists.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book with its derived fields.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// List returns a page of books matching the given parameters, along
	// with the total match count before pagination.
	List(ctx context.Context, params BookListParams) ([]*domain.Book, int64, error)

	// Update replaces the book's mutable fields.
	// Returns ErrBookNotFound if the book does not exist, and the same
	// duplicate errors as Create on constraint violations.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book.
	// Returns ErrBookNotFound if the book does not exist and
	// domain.ErrBookReferenced when order items still reference it.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new BookStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) BookStore
}
