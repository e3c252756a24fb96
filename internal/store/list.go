package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// Pagination defaults shared by all list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListParams carries the pagination, search and ordering parameters common to
// every list query. Ordering keys are matched against a per-store whitelist;
// a "-" prefix requests descending order. Unknown keys are ignored and the
// store falls back to its default ordering.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	OrderBy  string
}

// Normalize clamps the pagination parameters to sane values.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Limit returns the SQL LIMIT for the normalized parameters.
func (p ListParams) Limit() uint64 {
	return uint64(p.PageSize)
}

// Offset returns the SQL OFFSET for the normalized parameters.
func (p ListParams) Offset() uint64 {
	return uint64(p.Page-1) * uint64(p.PageSize)
}

// BookListParams narrows a book listing. Slug filters match the joined
// taxonomy rows; the min/max pairs on price and rating apply to the derived
// columns computed in SQL.
type BookListParams struct {
	ListParams

	GenreSlug   string
	FormatSlug  string
	StockSlug   string
	Language    string
	IsNew       *bool
	IsBC        *bool
	DiscountMin *int
	DiscountMax *int
	YearMin     *int
	YearMax     *int
	PriceMin    *float64
	PriceMax    *float64
	RatingMin   *float64
	RatingMax   *float64
}

// ReviewListParams narrows a review listing for a single book.
type ReviewListParams struct {
	ListParams

	RatingMin     *int
	RatingMax     *int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// CartListParams narrows a cart listing. UserID restricts the listing to a
// single owner; staff listings leave it nil.
type CartListParams struct {
	ListParams

	UserID       *uuid.UUID
	QuantityMin  *int
	QuantityMax  *int
	UnitPriceMin *float64
	UnitPriceMax *float64
	PriceMin     *float64
	PriceMax     *float64
}

// AddressListParams narrows an address listing.
type AddressListParams struct {
	ListParams

	UserID *uuid.UUID
}

// OrderListParams narrows an order listing. Role scoping is expressed through
// UserID (customer's own orders) and DelivererID (delivery crew assignments);
// staff listings leave both nil.
type OrderListParams struct {
	ListParams

	UserID       *uuid.UUID
	DelivererID  *uuid.UUID
	Status       domain.OrderStatus
	TotalMin     *float64
	TotalMax     *float64
	PlacedAfter  *time.Time
	PlacedBefore *time.Time
}

// HistoryListParams narrows an order history listing.
type HistoryListParams struct {
	ListParams

	Action string
	After  *time.Time
	Before *time.Time
}
