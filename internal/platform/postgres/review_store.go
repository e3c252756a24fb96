package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

var reviewOrderings = map[string]string{
	"rating":     "r.rating",
	"created_at": "r.created_at",
	"updated_at": "r.updated_at",
}

var reviewConstraints = map[string]error{
	"reviews_user_id_book_id_key": store.ErrReviewExists,
}

// PostgresReviewStore implements the store.ReviewStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db store.DBTX
	sb sq.StatementBuilderType
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the
// ReviewStore interface.
func NewPostgresReviewStore(db store.DBTX) *PostgresReviewStore {
	return &PostgresReviewStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// Create implements store.ReviewStore.Create
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO reviews (id, user_id, book_id, rating, title, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		review.ID, review.UserID, review.BookID, review.Rating,
		review.Title, review.Comment, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		return MapUniqueConstraint(err, reviewConstraints)
	}
	return nil
}

// GetByID implements store.ReviewStore.GetByID
func (s *PostgresReviewStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query, args, err := s.baseSelect().Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build review query: %w", err)
	}

	review, err := scanReview(s.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrReviewNotFound
		}
		return nil, MapError(err)
	}
	return review, nil
}

// ListByBook implements store.ReviewStore.ListByBook
func (s *PostgresReviewStore) ListByBook(ctx context.Context, bookID uuid.UUID, params store.ReviewListParams) ([]*domain.Review, int64, error) {
	params.Normalize()

	apply := func(q sq.SelectBuilder) sq.SelectBuilder {
		q = q.Where(sq.Eq{"r.book_id": bookID})
		if params.RatingMin != nil {
			q = q.Where(sq.GtOrEq{"r.rating": *params.RatingMin})
		}
		if params.RatingMax != nil {
			q = q.Where(sq.LtOrEq{"r.rating": *params.RatingMax})
		}
		if params.CreatedAfter != nil {
			q = q.Where(sq.GtOrEq{"r.created_at": *params.CreatedAfter})
		}
		if params.CreatedBefore != nil {
			q = q.Where(sq.LtOrEq{"r.created_at": *params.CreatedBefore})
		}
		if params.Search != "" {
			q = q.Where(sq.ILike{"u.email": "%" + params.Search + "%"})
		}
		return q
	}

	countQ := apply(s.sb.Select("COUNT(*)").
		From("reviews r").
		Join("users u ON u.id = r.user_id").
		Join("books b ON b.id = r.book_id"))
	var total int64
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build review count query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	listQ := applyOrdering(apply(s.baseSelect()), params.OrderBy, reviewOrderings, "r.created_at DESC").
		Limit(params.Limit()).
		Offset(params.Offset())

	query, args, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build review list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	reviews := make([]*domain.Review, 0, params.PageSize)
	for rows.Next() {
		review, err := scanReview(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return reviews, total, nil
}

// Update implements store.ReviewStore.Update
func (s *PostgresReviewStore) Update(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE reviews
		SET rating = $1, title = $2, comment = $3, updated_at = now()
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		review.Rating, review.Title, review.Comment, review.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReviewNotFound)
}

// Delete implements store.ReviewStore.Delete
func (s *PostgresReviewStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReviewNotFound)
}

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{db: tx, sb: s.sb}
}

func (s *PostgresReviewStore) baseSelect() sq.SelectBuilder {
	return s.sb.Select(
		"r.id", "r.user_id", "r.book_id", "r.rating", "r.title", "r.comment",
		"r.created_at", "r.updated_at", "u.email AS user_email", "b.title AS book_title",
	).
		From("reviews r").
		Join("users u ON u.id = r.user_id").
		Join("books b ON b.id = r.book_id")
}

func scanReview(scan func(dest ...any) error) (*domain.Review, error) {
	var r domain.Review
	err := scan(
		&r.ID, &r.UserID, &r.BookID, &r.Rating, &r.Title, &r.Comment,
		&r.CreatedAt, &r.UpdatedAt, &r.UserEmail, &r.BookTitle,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan review row: %w", err)
	}
	return &r, nil
}
