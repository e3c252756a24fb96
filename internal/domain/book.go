package domain

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Common book validation errors.
var (
	ErrEmptyBookID        = errors.New("book ID cannot be empty")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrEmptyAuthor        = errors.New("author cannot be empty")
	ErrEmptyPublisher     = errors.New("publisher cannot be empty")
	ErrInvalidYear        = errors.New("publication year must be greater than 0")
	ErrYearInFuture       = errors.New("publication year cannot be in the future for AD dates")
	ErrInvalidEdition     = errors.New("edition must be at least 1")
	ErrInvalidDiscount    = errors.New("discount must be between 0 and 100")
	ErrInvalidBasePrice   = errors.New("base price must be positive")
	ErrBlurbTooLong       = errors.New("blurb must be at most 1200 characters")
	ErrEmptyLanguage      = errors.New("language cannot be empty")
	ErrBookDiscontinued   = errors.New("book has been discontinued and is no longer available")
	ErrBookOutOfStock     = errors.New("book is currently out of stock")
	ErrBookReferenced     = errors.New("book is referenced by one or more orders")
)

// Well-known stock slugs with purchase-gating behaviour. Other stock entries
// are informational only.
const (
	StockOutOfStock   = "out-of-stock"
	StockDiscontinued = "discontinued"
)

// Book represents a catalog entry.
type Book struct {
	ID                   uuid.UUID `json:"id"`
	Title                string    `json:"title"`
	Author               string    `json:"author"`
	GenreID              uuid.UUID `json:"genre_id"`
	FirstPublicationYear int       `json:"first_publication_year"`
	IsBC                 bool      `json:"is_bc"`
	Blurb                string    `json:"blurb"`
	Publisher            string    `json:"publisher"`
	Edition              int       `json:"edition"`
	Language             string    `json:"language"`
	FormatID             uuid.UUID `json:"format_id"`
	ISBN                 string    `json:"isbn"`
	IsNew                bool      `json:"is_new"`
	StockID              uuid.UUID `json:"stock_id"`
	BasePrice            float64   `json:"base_price"`
	Discount             int       `json:"discount"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	// Read-side denormalizations, populated by list/get queries.
	GenreTitle    string   `json:"-"`
	FormatTitle   string   `json:"-"`
	StockSlug     string   `json:"-"`
	AverageRating *float64 `json:"-"`
}

// NewBook creates a validated Book with a fresh ID and normalized ISBN.
func NewBook(
	title, author string,
	genreID uuid.UUID,
	year int,
	isBC bool,
	blurb, publisher string,
	edition int,
	language string,
	formatID uuid.UUID,
	isbn string,
	isNew bool,
	stockID uuid.UUID,
	basePrice float64,
	discount int,
) (*Book, error) {
	normalized, err := NormalizeISBN(isbn)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := &Book{
		ID:                   uuid.New(),
		Title:                title,
		Author:               author,
		GenreID:              genreID,
		FirstPublicationYear: year,
		IsBC:                 isBC,
		Blurb:                blurb,
		Publisher:            publisher,
		Edition:              edition,
		Language:             language,
		FormatID:             formatID,
		ISBN:                 normalized,
		IsNew:                isNew,
		StockID:              stockID,
		BasePrice:            basePrice,
		Discount:             discount,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}
	return book, nil
}

// Validate checks the Book's field invariants.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookID
	}
	if b.Title == "" {
		return ErrEmptyTitle
	}
	if b.Author == "" {
		return ErrEmptyAuthor
	}
	if b.Publisher == "" {
		return ErrEmptyPublisher
	}
	if b.Language == "" {
		return ErrEmptyLanguage
	}
	if b.FirstPublicationYear <= 0 {
		return ErrInvalidYear
	}
	if !b.IsBC && b.FirstPublicationYear > time.Now().UTC().Year() {
		return ErrYearInFuture
	}
	if b.Edition < 1 {
		return ErrInvalidEdition
	}
	if b.Discount < 0 || b.Discount > 100 {
		return ErrInvalidDiscount
	}
	if b.BasePrice <= 0 {
		return ErrInvalidBasePrice
	}
	if len(b.Blurb) > 1200 {
		return ErrBlurbTooLong
	}
	if _, err := NormalizeISBN(b.ISBN); err != nil {
		return err
	}
	return nil
}

// Price returns the effective selling price: base price reduced by the
// discount percentage, rounded to 2 decimal places. List queries compute the
// same expression in SQL so filters and responses agree.
func (b *Book) Price() float64 {
	return Round2(b.BasePrice * float64(100-b.Discount) / 100)
}

// PublicationYear renders the year with its era, e.g. "431 BC" or "1974".
func (b *Book) PublicationYear() string {
	if b.IsBC {
		return strconv.Itoa(b.FirstPublicationYear) + " BC"
	}
	return strconv.Itoa(b.FirstPublicationYear)
}

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
