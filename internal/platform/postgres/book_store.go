package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/platform/logger"
	"github.com/pagebound/bookstore-api/internal/store"
)

// SQL expressions for the derived book columns. Price applies the discount to
// the base price; the average rating aggregates the book's reviews.
const (
	bookPriceExpr  = "ROUND(b.base_price * (100 - b.discount) / 100.0, 2)"
	bookRatingExpr = "(SELECT AVG(r.rating)::float8 FROM reviews r WHERE r.book_id = b.id)"
)

// bookColumns are the columns selected for every book read, including the
// joined taxonomy titles and the derived price and rating.
var bookColumns = []string{
	"b.id", "b.title", "b.author", "b.genre_id", "b.first_publication_year",
	"b.is_bc", "b.blurb", "b.publisher", "b.edition", "b.language",
	"b.format_id", "b.isbn", "b.is_new", "b.stock_id", "b.base_price",
	"b.discount", "b.created_at", "b.updated_at",
	"g.title AS genre_title", "f.title AS format_title", "s.slug AS stock_slug",
	bookRatingExpr + " AS average_rating",
}

// bookOrderings whitelists the ordering keys accepted by List.
var bookOrderings = map[string]string{
	"title":    "b.title",
	"author":   "b.author",
	"edition":  "b.edition",
	"discount": "b.discount",
	"price":    bookPriceExpr,
}

// bookConstraints maps unique constraint names to their sentinel errors.
var bookConstraints = map[string]error{
	"books_isbn_key":    store.ErrISBNExists,
	"books_edition_key": store.ErrEditionExists,
}

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db store.DBTX
	sb sq.StatementBuilderType
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the
// BookStore interface.
func NewPostgresBookStore(db store.DBTX) *PostgresBookStore {
	return &PostgresBookStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

// Create implements store.BookStore.Create
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	if err := book.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO books (
			id, title, author, genre_id, first_publication_year, is_bc,
			blurb, publisher, edition, language, format_id, isbn, is_new,
			stock_id, base_price, discount, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.db.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.GenreID,
		book.FirstPublicationYear, book.IsBC, book.Blurb, book.Publisher,
		book.Edition, book.Language, book.FormatID, book.ISBN, book.IsNew,
		book.StockID, book.BasePrice, book.Discount,
		book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Debug("failed to insert book", "error", err)
		return MapUniqueConstraint(err, bookConstraints)
	}
	return nil
}

// GetByID implements store.BookStore.GetByID
func (s *PostgresBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query, args, err := s.baseSelect().Where(sq.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build book query: %w", err)
	}

	book, err := scanBook(s.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrBookNotFound
		}
		return nil, MapError(err)
	}
	return book, nil
}

// List implements store.BookStore.List
func (s *PostgresBookStore) List(ctx context.Context, params store.BookListParams) ([]*domain.Book, int64, error) {
	params.Normalize()

	filtered := s.applyBookFilters(s.baseSelect(), params)

	countQ := s.applyBookFilters(
		s.sb.Select("COUNT(*)").
			From("books b").
			Join("genres g ON g.id = b.genre_id").
			Join("book_formats f ON f.id = b.format_id").
			Join("stocks s ON s.id = b.stock_id"),
		params,
	)
	total, err := s.count(ctx, countQ)
	if err != nil {
		return nil, 0, err
	}

	filtered = applyOrdering(filtered, params.OrderBy, bookOrderings, "b.title ASC").
		Limit(params.Limit()).
		Offset(params.Offset())

	query, args, err := filtered.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build book list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	books := make([]*domain.Book, 0, params.PageSize)
	for rows.Next() {
		book, err := scanBook(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return books, total, nil
}

// Update implements store.BookStore.Update
func (s *PostgresBookStore) Update(ctx context.Context, book *domain.Book) error {
	if err := book.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE books
		SET title = $1, author = $2, genre_id = $3, first_publication_year = $4,
		    is_bc = $5, blurb = $6, publisher = $7, edition = $8, language = $9,
		    format_id = $10, isbn = $11, is_new = $12, stock_id = $13,
		    base_price = $14, discount = $15, updated_at = now()
		WHERE id = $16
	`
	result, err := s.db.ExecContext(ctx, query,
		book.Title, book.Author, book.GenreID, book.FirstPublicationYear,
		book.IsBC, book.Blurb, book.Publisher, book.Edition, book.Language,
		book.FormatID, book.ISBN, book.IsNew, book.StockID,
		book.BasePrice, book.Discount, book.ID,
	)
	if err != nil {
		return MapUniqueConstraint(err, bookConstraints)
	}
	return CheckRowsAffected(result, store.ErrBookNotFound)
}

// Delete implements store.BookStore.Delete. Books referenced by order items
// are protected by an FK RESTRICT and surface domain.ErrBookReferenced.
func (s *PostgresBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrBookReferenced, err)
		}
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrBookNotFound)
}

// WithTx implements store.BookStore.WithTx
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{db: tx, sb: s.sb}
}

func (s *PostgresBookStore) baseSelect() sq.SelectBuilder {
	return s.sb.Select(bookColumns...).
		From("books b").
		Join("genres g ON g.id = b.genre_id").
		Join("book_formats f ON f.id = b.format_id").
		Join("stocks s ON s.id = b.stock_id")
}

func (s *PostgresBookStore) applyBookFilters(q sq.SelectBuilder, params store.BookListParams) sq.SelectBuilder {
	if params.GenreSlug != "" {
		q = q.Where(sq.Eq{"g.slug": params.GenreSlug})
	}
	if params.FormatSlug != "" {
		q = q.Where(sq.Eq{"f.slug": params.FormatSlug})
	}
	if params.StockSlug != "" {
		q = q.Where(sq.Eq{"s.slug": params.StockSlug})
	}
	if params.Language != "" {
		q = q.Where("LOWER(b.language) = LOWER(?)", params.Language)
	}
	if params.IsNew != nil {
		q = q.Where(sq.Eq{"b.is_new": *params.IsNew})
	}
	if params.IsBC != nil {
		q = q.Where(sq.Eq{"b.is_bc": *params.IsBC})
	}
	if params.DiscountMin != nil {
		q = q.Where(sq.GtOrEq{"b.discount": *params.DiscountMin})
	}
	if params.DiscountMax != nil {
		q = q.Where(sq.LtOrEq{"b.discount": *params.DiscountMax})
	}
	if params.YearMin != nil {
		q = q.Where(sq.GtOrEq{"b.first_publication_year": *params.YearMin})
	}
	if params.YearMax != nil {
		q = q.Where(sq.LtOrEq{"b.first_publication_year": *params.YearMax})
	}
	if params.PriceMin != nil {
		q = q.Where(bookPriceExpr+" >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		q = q.Where(bookPriceExpr+" <= ?", *params.PriceMax)
	}
	if params.RatingMin != nil {
		q = q.Where(bookRatingExpr+" >= ?", *params.RatingMin)
	}
	if params.RatingMax != nil {
		q = q.Where(bookRatingExpr+" <= ?", *params.RatingMax)
	}
	if params.Search != "" {
		needle := "%" + params.Search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"b.title": needle},
			sq.ILike{"b.author": needle},
			sq.ILike{"g.title": needle},
			sq.ILike{"b.publisher": needle},
		})
	}
	return q
}

func (s *PostgresBookStore) count(ctx context.Context, q sq.SelectBuilder) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, MapError(err)
	}
	return total, nil
}

// applyOrdering resolves the requested ordering key against a whitelist,
// falling back to the given default when the key is empty or unknown.
func applyOrdering(q sq.SelectBuilder, orderBy string, whitelist map[string]string, fallback string) sq.SelectBuilder {
	if orderBy == "" {
		return q.OrderBy(fallback)
	}

	dir := "ASC"
	key := orderBy
	if strings.HasPrefix(orderBy, "-") {
		dir = "DESC"
		key = orderBy[1:]
	}

	col, ok := whitelist[key]
	if !ok {
		return q.OrderBy(fallback)
	}
	return q.OrderBy(col + " " + dir)
}

func scanBook(scan func(dest ...any) error) (*domain.Book, error) {
	var b domain.Book
	var rating sql.NullFloat64
	err := scan(
		&b.ID, &b.Title, &b.Author, &b.GenreID, &b.FirstPublicationYear,
		&b.IsBC, &b.Blurb, &b.Publisher, &b.Edition, &b.Language,
		&b.FormatID, &b.ISBN, &b.IsNew, &b.StockID, &b.BasePrice,
		&b.Discount, &b.CreatedAt, &b.UpdatedAt,
		&b.GenreTitle, &b.FormatTitle, &b.StockSlug, &rating,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan book row: %w", err)
	}
	if rating.Valid {
		b.AverageRating = &rating.Float64
	}
	return &b, nil
}
