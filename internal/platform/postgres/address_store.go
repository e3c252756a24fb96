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

var addressConstraints = map[string]error{
	"addresses_identity_key": store.ErrAddressExists,
}

// PostgresAddressStore implements the store.AddressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAddressStore struct {
	db store.DBTX
	sb sq.StatementBuilderType
}

// NewPostgresAddressStore creates a new PostgreSQL implementation of the
// AddressStore interface.
func NewPostgresAddressStore(db store.DBTX) *PostgresAddressStore {
	return &PostgresAddressStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Ensure PostgresAddressStore implements store.AddressStore interface
var _ store.AddressStore = (*PostgresAddressStore)(nil)

// Create implements store.AddressStore.Create
func (s *PostgresAddressStore) Create(ctx context.Context, address *domain.Address) error {
	if err := address.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO addresses (
			id, user_id, recipient, country_id, state_province, city_town,
			zip_code, street_name, number, apartment_suite, notes,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		address.ID, address.UserID, address.Recipient, address.CountryID,
		address.StateProvince, address.CityTown, address.ZipCode,
		address.StreetName, address.Number, address.ApartmentSuite,
		address.Notes, address.CreatedAt, address.UpdatedAt,
	)
	if err != nil {
		return MapUniqueConstraint(err, addressConstraints)
	}
	return nil
}

// GetByID implements store.AddressStore.GetByID
func (s *PostgresAddressStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	query, args, err := s.baseSelect().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build address query: %w", err)
	}

	address, err := scanAddress(s.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrAddressNotFound
		}
		return nil, MapError(err)
	}
	return address, nil
}

// List implements store.AddressStore.List
func (s *PostgresAddressStore) List(ctx context.Context, params store.AddressListParams) ([]*domain.Address, int64, error) {
	params.Normalize()

	apply := func(q sq.SelectBuilder) sq.SelectBuilder {
		if params.UserID != nil {
			q = q.Where(sq.Eq{"a.user_id": *params.UserID})
		}
		if params.Search != "" {
			needle := "%" + params.Search + "%"
			q = q.Where(sq.Or{
				sq.ILike{"a.recipient": needle},
				sq.ILike{"co.title": needle},
				sq.ILike{"a.city_town": needle},
				sq.ILike{"a.street_name": needle},
			})
		}
		return q
	}

	countQ := apply(s.sb.Select("COUNT(*)").
		From("addresses a").
		Join("users u ON u.id = a.user_id").
		Join("countries co ON co.id = a.country_id"))
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build address count query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	listQ := apply(s.baseSelect()).
		OrderBy("a.created_at DESC").
		Limit(params.Limit()).
		Offset(params.Offset())

	query, args, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build address list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	addresses := make([]*domain.Address, 0, params.PageSize)
	for rows.Next() {
		address, err := scanAddress(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return addresses, total, nil
}

// Update implements store.AddressStore.Update
func (s *PostgresAddressStore) Update(ctx context.Context, address *domain.Address) error {
	if err := address.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE addresses
		SET recipient = $1, country_id = $2, state_province = $3, city_town = $4,
		    zip_code = $5, street_name = $6, number = $7, apartment_suite = $8,
		    notes = $9, updated_at = now()
		WHERE id = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		address.Recipient, address.CountryID, address.StateProvince,
		address.CityTown, address.ZipCode, address.StreetName,
		address.Number, address.ApartmentSuite, address.Notes, address.ID,
	)
	if err != nil {
		return MapUniqueConstraint(err, addressConstraints)
	}
	return CheckRowsAffected(result, store.ErrAddressNotFound)
}

// Delete implements store.AddressStore.Delete
func (s *PostgresAddressStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: address is referenced by an order: %v", store.ErrDeleteFailed, err)
		}
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAddressNotFound)
}

// WithTx implements store.AddressStore.WithTx
func (s *PostgresAddressStore) WithTx(tx *sql.Tx) store.AddressStore {
	return &PostgresAddressStore{db: tx, sb: s.sb}
}

func (s *PostgresAddressStore) baseSelect() sq.SelectBuilder {
	return s.sb.Select(
		"a.id", "a.user_id", "a.recipient", "a.country_id", "a.state_province",
		"a.city_town", "a.zip_code", "a.street_name", "a.number",
		"a.apartment_suite", "a.notes", "a.created_at", "a.updated_at",
		"u.email AS user_email", "co.title AS country_title",
	).
		From("addresses a").
		Join("users u ON u.id = a.user_id").
		Join("countries co ON co.id = a.country_id")
}

func scanAddress(scan func(dest ...any) error) (*domain.Address, error) {
	var a domain.Address
	err := scan(
		&a.ID, &a.UserID, &a.Recipient, &a.CountryID, &a.StateProvince,
		&a.CityTown, &a.ZipCode, &a.StreetName, &a.Number,
		&a.ApartmentSuite, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&a.UserEmail, &a.CountryTitle,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan address row: %w", err)
	}
	return &a, nil
}
