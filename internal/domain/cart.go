package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common cart validation errors.
var (
	ErrEmptyCartItemID  = errors.New("cart item ID cannot be empty")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrCartUserMissing  = errors.New("cart item must reference a user")
	ErrCartBookMissing  = errors.New("cart item must reference a book")
	ErrBookAlreadyInCart = errors.New("book is already in the cart")
)

// CartItem is one book held in a user's cart. Unit price is captured at the
// moment of adding (base price less discount) and the line price is derived
// from it, so later catalog price changes do not silently reprice a cart.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Read-side denormalizations.
	UserEmail  string `json:"-"`
	BookTitle  string `json:"-"`
	BookAuthor string `json:"-"`
}

// NewCartItem creates a validated cart entry for the given book, computing
// the unit price from the book's current selling price.
func NewCartItem(userID uuid.UUID, book *Book, quantity int) (*CartItem, error) {
	if book == nil {
		return nil, ErrCartBookMissing
	}

	// Purchase gating on stock status.
	switch book.StockSlug {
	case StockOutOfStock:
		return nil, ErrBookOutOfStock
	case StockDiscontinued:
		return nil, ErrBookDiscontinued
	}

	unit := book.Price()
	now := time.Now().UTC()
	item := &CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    book.ID,
		Quantity:  quantity,
		UnitPrice: unit,
		Price:     Round2(unit * float64(quantity)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the CartItem's field invariants.
func (c *CartItem) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCartItemID
	}
	if c.UserID == uuid.Nil {
		return ErrCartUserMissing
	}
	if c.BookID == uuid.Nil {
		return ErrCartBookMissing
	}
	if c.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// SetQuantity updates the quantity and recomputes the line price. Quantity is
// the only mutable field on a cart entry.
func (c *CartItem) SetQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	c.Quantity = quantity
	c.Price = Round2(c.UnitPrice * float64(quantity))
	c.UpdatedAt = time.Now().UTC()
	return nil
}
