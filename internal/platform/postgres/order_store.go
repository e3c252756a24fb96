package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/platform/logger"
	"github.com/pagebound/bookstore-api/internal/store"
)

// addressDisplayExpr renders the one-line address shown on order reads.
const addressDisplayExpr = "a.street_name || ' ' || a.number || ', ' || a.city_town || ', ' || co.title"

var orderOrderings = map[string]string{
	"total":       "o.total",
	"when_placed": "o.when_placed",
}

// PostgresOrderStore implements the store.OrderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresOrderStore struct {
	db store.DBTX
	sb sq.StatementBuilderType
}

// NewPostgresOrderStore creates a new PostgreSQL implementation of the
// OrderStore interface.
func NewPostgresOrderStore(db store.DBTX) *PostgresOrderStore {
	return &PostgresOrderStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Ensure PostgresOrderStore implements store.OrderStore interface
var _ store.OrderStore = (*PostgresOrderStore)(nil)

// Create implements store.OrderStore.Create
func (s *PostgresOrderStore) Create(ctx context.Context, order *domain.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO orders (id, user_id, deliverer_id, address_id, status_id, total, when_placed, when_last_update)
		VALUES ($1, $2, $3, $4, (SELECT id FROM order_statuses WHERE slug = $5), $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		order.ID, order.UserID, order.DelivererID, order.AddressID,
		string(order.Status), order.Total, order.WhenPlaced, order.WhenLastUpdate,
	)
	if err != nil {
		logger.FromContext(ctx).Debug("failed to insert order", "error", err)
		return MapError(err)
	}
	return nil
}

// GetByID implements store.OrderStore.GetByID
func (s *PostgresOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query, args, err := s.baseSelect().Where(sq.Eq{"o.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}

	order, err := scanOrder(s.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrOrderNotFound
		}
		return nil, MapError(err)
	}
	return order, nil
}

// List implements store.OrderStore.List
func (s *PostgresOrderStore) List(ctx context.Context, params store.OrderListParams) ([]*domain.Order, int64, error) {
	params.Normalize()

	apply := func(q sq.SelectBuilder) sq.SelectBuilder {
		if params.UserID != nil {
			q = q.Where(sq.Eq{"o.user_id": *params.UserID})
		}
		if params.DelivererID != nil {
			q = q.Where(sq.Eq{"o.deliverer_id": *params.DelivererID})
		}
		if params.Status != "" {
			q = q.Where(sq.Eq{"os.slug": string(params.Status)})
		}
		if params.TotalMin != nil {
			q = q.Where(sq.GtOrEq{"o.total": *params.TotalMin})
		}
		if params.TotalMax != nil {
			q = q.Where(sq.LtOrEq{"o.total": *params.TotalMax})
		}
		if params.PlacedAfter != nil {
			q = q.Where(sq.GtOrEq{"o.when_placed": *params.PlacedAfter})
		}
		if params.PlacedBefore != nil {
			q = q.Where(sq.LtOrEq{"o.when_placed": *params.PlacedBefore})
		}
		if params.Search != "" {
			q = q.Where(sq.ILike{"u.email": "%" + params.Search + "%"})
		}
		return q
	}

	countQ := apply(s.sb.Select("COUNT(*)").
		From("orders o").
		Join("users u ON u.id = o.user_id").
		Join("order_statuses os ON os.id = o.status_id").
		Join("addresses a ON a.id = o.address_id").
		Join("countries co ON co.id = a.country_id").
		LeftJoin("users d ON d.id = o.deliverer_id"))
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build order count query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	listQ := applyOrdering(apply(s.baseSelect()), params.OrderBy, orderOrderings, "o.when_placed DESC").
		Limit(params.Limit()).
		Offset(params.Offset())

	query, args, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build order list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	orders := make([]*domain.Order, 0, params.PageSize)
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return orders, total, nil
}

// Update implements store.OrderStore.Update
func (s *PostgresOrderStore) Update(ctx context.Context, order *domain.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE orders
		SET deliverer_id = $1, address_id = $2,
		    status_id = (SELECT id FROM order_statuses WHERE slug = $3),
		    when_last_update = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		order.DelivererID, order.AddressID, string(order.Status),
		order.WhenLastUpdate, order.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrOrderNotFound)
}

// CreateItems implements store.OrderStore.CreateItems
func (s *PostgresOrderStore) CreateItems(ctx context.Context, items []*domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	insert := s.sb.Insert("order_items").
		Columns("id", "order_id", "book_id", "quantity", "unit_price", "price")
	for _, item := range items {
		insert = insert.Values(item.ID, item.OrderID, item.BookID, item.Quantity, item.UnitPrice, item.Price)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order items insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return MapError(err)
	}
	return nil
}

// ListItems implements store.OrderStore.ListItems
func (s *PostgresOrderStore) ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.book_id, i.quantity, i.unit_price, i.price,
		       b.title, b.author
		FROM order_items i
		JOIN books b ON b.id = i.book_id
		WHERE i.order_id = $1
		ORDER BY b.title
	`
	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.BookID, &item.Quantity,
			&item.UnitPrice, &item.Price, &item.BookTitle, &item.BookAuthor,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item row: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return items, nil
}

// CreateHistory implements store.OrderStore.CreateHistory
func (s *PostgresOrderStore) CreateHistory(ctx context.Context, entry *domain.OrderHistory) error {
	query := `
		INSERT INTO order_history (id, order_id, status_id, performed_by, action, timestamp)
		VALUES ($1, $2, (SELECT id FROM order_statuses WHERE slug = $3), $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.OrderID, string(entry.Status),
		entry.PerformedBy, entry.Action, entry.Timestamp,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// ListHistory implements store.OrderStore.ListHistory
func (s *PostgresOrderStore) ListHistory(ctx context.Context, orderID uuid.UUID, params store.HistoryListParams) ([]*domain.OrderHistory, int64, error) {
	params.Normalize()

	apply := func(q sq.SelectBuilder) sq.SelectBuilder {
		q = q.Where(sq.Eq{"h.order_id": orderID})
		if params.Action != "" {
			q = q.Where(sq.ILike{"h.action": "%" + params.Action + "%"})
		}
		if params.After != nil {
			q = q.Where(sq.GtOrEq{"h.timestamp": *params.After})
		}
		if params.Before != nil {
			q = q.Where(sq.LtOrEq{"h.timestamp": *params.Before})
		}
		return q
	}

	countQ := apply(s.sb.Select("COUNT(*)").From("order_history h"))
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build history count query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	listQ := apply(s.sb.Select(
		"h.id", "h.order_id", "os.slug", "h.performed_by", "h.action", "h.timestamp",
		"p.email AS performed_by_email",
	).
		From("order_history h").
		Join("order_statuses os ON os.id = h.status_id").
		LeftJoin("users p ON p.id = h.performed_by")).
		OrderBy("h.timestamp ASC").
		Limit(params.Limit()).
		Offset(params.Offset())

	query, args, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build history list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.OrderHistory, 0, params.PageSize)
	for rows.Next() {
		var h domain.OrderHistory
		var statusSlug string
		var performedBy uuid.NullUUID
		var performedByEmail sql.NullString
		err := rows.Scan(
			&h.ID, &h.OrderID, &statusSlug, &performedBy, &h.Action,
			&h.Timestamp, &performedByEmail,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan history row: %w", err)
		}
		h.Status = domain.OrderStatus(statusSlug)
		if performedBy.Valid {
			id := performedBy.UUID
			h.PerformedBy = &id
		}
		if performedByEmail.Valid {
			h.PerformedByEmail = performedByEmail.String
		}
		entries = append(entries, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return entries, total, nil
}

// WithTx implements store.OrderStore.WithTx
func (s *PostgresOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return &PostgresOrderStore{db: tx, sb: s.sb}
}

func (s *PostgresOrderStore) baseSelect() sq.SelectBuilder {
	return s.sb.Select(
		"o.id", "o.user_id", "o.deliverer_id", "o.address_id", "os.slug",
		"o.total", "o.when_placed", "o.when_last_update",
		"u.email AS user_email", "d.email AS deliverer_email",
		addressDisplayExpr+" AS address_display",
	).
		From("orders o").
		Join("users u ON u.id = o.user_id").
		Join("order_statuses os ON os.id = o.status_id").
		Join("addresses a ON a.id = o.address_id").
		Join("countries co ON co.id = a.country_id").
		LeftJoin("users d ON d.id = o.deliverer_id")
}

func scanOrder(scan func(dest ...any) error) (*domain.Order, error) {
	var o domain.Order
	var statusSlug string
	var delivererID uuid.NullUUID
	var delivererEmail sql.NullString
	err := scan(
		&o.ID, &o.UserID, &delivererID, &o.AddressID, &statusSlug,
		&o.Total, &o.WhenPlaced, &o.WhenLastUpdate,
		&o.UserEmail, &delivererEmail, &o.AddressDisplay,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order row: %w", err)
	}
	o.Status = domain.OrderStatus(statusSlug)
	if delivererID.Valid {
		id := delivererID.UUID
		o.DelivererID = &id
	}
	if delivererEmail.Valid {
		o.DelivererEmail = delivererEmail.String
	}
	return &o, nil
}
