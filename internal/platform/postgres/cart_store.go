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

var cartOrderings = map[string]string{
	"quantity":   "c.quantity",
	"unit_price": "c.unit_price",
	"price":      "c.price",
}

var cartConstraints = map[string]error{
	"cart_items_user_id_book_id_key": store.ErrCartItemExists,
}

// PostgresCartStore implements the store.CartStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCartStore struct {
	db store.DBTX
	sb sq.StatementBuilderType
}

// NewPostgresCartStore creates a new PostgreSQL implementation of the
// CartStore interface.
func NewPostgresCartStore(db store.DBTX) *PostgresCartStore {
	return &PostgresCartStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Ensure PostgresCartStore implements store.CartStore interface
var _ store.CartStore = (*PostgresCartStore)(nil)

// Create implements store.CartStore.Create
func (s *PostgresCartStore) Create(ctx context.Context, item *domain.CartItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cart_items (id, user_id, book_id, quantity, unit_price, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.BookID, item.Quantity,
		item.UnitPrice, item.Price, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return MapUniqueConstraint(err, cartConstraints)
	}
	return nil
}

// GetByID implements store.CartStore.GetByID
func (s *PostgresCartStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	query, args, err := s.baseSelect().Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cart query: %w", err)
	}

	item, err := scanCartItem(s.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrCartItemNotFound
		}
		return nil, MapError(err)
	}
	return item, nil
}

// List implements store.CartStore.List
func (s *PostgresCartStore) List(ctx context.Context, params store.CartListParams) ([]*domain.CartItem, int64, error) {
	params.Normalize()

	apply := func(q sq.SelectBuilder) sq.SelectBuilder {
		if params.UserID != nil {
			q = q.Where(sq.Eq{"c.user_id": *params.UserID})
		}
		if params.QuantityMin != nil {
			q = q.Where(sq.GtOrEq{"c.quantity": *params.QuantityMin})
		}
		if params.QuantityMax != nil {
			q = q.Where(sq.LtOrEq{"c.quantity": *params.QuantityMax})
		}
		if params.UnitPriceMin != nil {
			q = q.Where(sq.GtOrEq{"c.unit_price": *params.UnitPriceMin})
		}
		if params.UnitPriceMax != nil {
			q = q.Where(sq.LtOrEq{"c.unit_price": *params.UnitPriceMax})
		}
		if params.PriceMin != nil {
			q = q.Where(sq.GtOrEq{"c.price": *params.PriceMin})
		}
		if params.PriceMax != nil {
			q = q.Where(sq.LtOrEq{"c.price": *params.PriceMax})
		}
		if params.Search != "" {
			needle := "%" + params.Search + "%"
			q = q.Where(sq.Or{
				sq.ILike{"u.email": needle},
				sq.ILike{"b.title": needle},
				sq.ILike{"b.author": needle},
			})
		}
		return q
	}

	countQ := apply(s.sb.Select("COUNT(*)").
		From("cart_items c").
		Join("users u ON u.id = c.user_id").
		Join("books b ON b.id = c.book_id"))
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build cart count query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	listQ := applyOrdering(apply(s.baseSelect()), params.OrderBy, cartOrderings, "c.created_at DESC").
		Limit(params.Limit()).
		Offset(params.Offset())

	query, args, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build cart list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.CartItem, 0, params.PageSize)
	for rows.Next() {
		item, err := scanCartItem(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return items, total, nil
}

// ListByUser implements store.CartStore.ListByUser
func (s *PostgresCartStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	query, args, err := s.baseSelect().
		Where(sq.Eq{"c.user_id": userID}).
		OrderBy("c.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cart query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.CartItem, 0)
	for rows.Next() {
		item, err := scanCartItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return items, nil
}

// Update implements store.CartStore.Update
func (s *PostgresCartStore) Update(ctx context.Context, item *domain.CartItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cart_items
		SET quantity = $1, price = $2, updated_at = now()
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, item.Quantity, item.Price, item.ID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCartItemNotFound)
}

// Delete implements store.CartStore.Delete
func (s *PostgresCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCartItemNotFound)
}

// Flush implements store.CartStore.Flush
func (s *PostgresCartStore) Flush(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, MapError(err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// WithTx implements store.CartStore.WithTx
func (s *PostgresCartStore) WithTx(tx *sql.Tx) store.CartStore {
	return &PostgresCartStore{db: tx, sb: s.sb}
}

func (s *PostgresCartStore) baseSelect() sq.SelectBuilder {
	return s.sb.Select(
		"c.id", "c.user_id", "c.book_id", "c.quantity", "c.unit_price", "c.price",
		"c.created_at", "c.updated_at",
		"u.email AS user_email", "b.title AS book_title", "b.author AS book_author",
	).
		From("cart_items c").
		Join("users u ON u.id = c.user_id").
		Join("books b ON b.id = c.book_id")
}

func scanCartItem(scan func(dest ...any) error) (*domain.CartItem, error) {
	var c domain.CartItem
	err := scan(
		&c.ID, &c.UserID, &c.BookID, &c.Quantity, &c.UnitPrice, &c.Price,
		&c.CreatedAt, &c.UpdatedAt, &c.UserEmail, &c.BookTitle, &c.BookAuthor,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan cart item row: %w", err)
	}
	return &c, nil
}
