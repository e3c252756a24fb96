package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// PostgresTaxonomyStore implements the store.TaxonomyStore interface over the
// seeded lookup tables. The kind doubles as the table name; only the kinds
// declared in the store package are accepted, so the table name is never
// attacker-controlled.
type PostgresTaxonomyStore struct {
	db store.DBTX
}

// NewPostgresTaxonomyStore creates a new PostgreSQL implementation of the
// TaxonomyStore interface.
func NewPostgresTaxonomyStore(db store.DBTX) *PostgresTaxonomyStore {
	return &PostgresTaxonomyStore{db: db}
}

// Ensure PostgresTaxonomyStore implements store.TaxonomyStore interface
var _ store.TaxonomyStore = (*PostgresTaxonomyStore)(nil)

var knownKinds = map[store.TaxonomyKind]bool{
	store.KindGenre:       true,
	store.KindStock:       true,
	store.KindBookFormat:  true,
	store.KindOrderStatus: true,
	store.KindCountry:     true,
}

func tableFor(kind store.TaxonomyKind) (string, error) {
	if !knownKinds[kind] {
		return "", fmt.Errorf("unknown taxonomy kind: %q", kind)
	}
	return string(kind), nil
}

// List implements store.TaxonomyStore.List
func (s *PostgresTaxonomyStore) List(ctx context.Context, kind store.TaxonomyKind) ([]*domain.Taxonomy, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	// Only countries carry an ISO 3166 code; the other tables select a NULL
	// placeholder so one scan path serves all kinds.
	iso := "NULL"
	if kind == store.KindCountry {
		iso = "iso_3166"
	}

	query := fmt.Sprintf(`SELECT id, title, slug, %s FROM %s ORDER BY title`, iso, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.Taxonomy, 0)
	for rows.Next() {
		entry, err := scanTaxonomy(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}

// GetByID implements store.TaxonomyStore.GetByID
func (s *PostgresTaxonomyStore) GetByID(ctx context.Context, kind store.TaxonomyKind, id uuid.UUID) (*domain.Taxonomy, error) {
	return s.getBy(ctx, kind, "id", id)
}

// GetBySlug implements store.TaxonomyStore.GetBySlug
func (s *PostgresTaxonomyStore) GetBySlug(ctx context.Context, kind store.TaxonomyKind, slug string) (*domain.Taxonomy, error) {
	return s.getBy(ctx, kind, "slug", slug)
}

func (s *PostgresTaxonomyStore) getBy(ctx context.Context, kind store.TaxonomyKind, column string, value any) (*domain.Taxonomy, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	iso := "NULL"
	if kind == store.KindCountry {
		iso = "iso_3166"
	}

	query := fmt.Sprintf(`SELECT id, title, slug, %s FROM %s WHERE %s = $1`, iso, table, column)
	entry, err := scanTaxonomy(s.db.QueryRowContext(ctx, query, value).Scan)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrTaxonomyNotFound
		}
		return nil, err
	}
	return entry, nil
}

// IsNotFound reports whether err represents a missing row, either directly
// from database/sql or already mapped to store.ErrNotFound.
func IsNotFound(err error) bool {
	return err == sql.ErrNoRows || store.IsNotFoundError(err)
}

func scanTaxonomy(scan func(dest ...any) error) (*domain.Taxonomy, error) {
	var t domain.Taxonomy
	var iso sql.NullString
	if err := scan(&t.ID, &t.Title, &t.Slug, &iso); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan taxonomy row: %w", err)
	}
	if iso.Valid {
		t.ISO3166 = iso.String
	}
	return &t, nil
}
