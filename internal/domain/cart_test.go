package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartItem(t *testing.T) {
	t.Parallel()

	book := validBook(t)
	book.BasePrice = 15.00
	book.Discount = 20
	book.StockSlug = "available"

	item, err := NewCartItem(uuid.New(), book, 3)
	require.NoError(t, err)

	assert.Equal(t, book.ID, item.BookID)
	assert.Equal(t, 3, item.Quantity)
	assert.InDelta(t, 12.00, item.UnitPrice, 0.001, "unit price captured from the discounted book price")
	assert.InDelta(t, 36.00, item.Price, 0.001)
}

func TestNewCartItem_StockGating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		stock   string
		wantErr error
	}{
		{"available", "available", nil},
		{"last-copies still sellable", "last-copies", nil},
		{"out of stock", StockOutOfStock, ErrBookOutOfStock},
		{"discontinued", StockDiscontinued, ErrBookDiscontinued},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			book := validBook(t)
			book.StockSlug = tt.stock
			_, err := NewCartItem(uuid.New(), book, 1)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewCartItem_InvalidQuantity(t *testing.T) {
	t.Parallel()

	book := validBook(t)
	book.StockSlug = "available"

	_, err := NewCartItem(uuid.New(), book, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewCartItem(uuid.New(), book, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartItemSetQuantity(t *testing.T) {
	t.Parallel()

	book := validBook(t)
	book.BasePrice = 9.99
	book.Discount = 0
	book.StockSlug = "available"

	item, err := NewCartItem(uuid.New(), book, 1)
	require.NoError(t, err)

	require.NoError(t, item.SetQuantity(4))
	assert.Equal(t, 4, item.Quantity)
	assert.InDelta(t, 39.96, item.Price, 0.001)
	assert.InDelta(t, 9.99, item.UnitPrice, 0.001, "unit price is fixed at add time")

	assert.ErrorIs(t, item.SetQuantity(0), ErrInvalidQuantity)
	assert.Equal(t, 4, item.Quantity, "failed update must not change quantity")
}

func TestOrderItemFromCart(t *testing.T) {
	t.Parallel()

	book := validBook(t)
	book.StockSlug = "available"

	item, err := NewCartItem(uuid.New(), book, 2)
	require.NoError(t, err)

	orderID := uuid.New()
	oi := OrderItemFromCart(orderID, item)
	assert.Equal(t, orderID, oi.OrderID)
	assert.Equal(t, item.BookID, oi.BookID)
	assert.Equal(t, item.Quantity, oi.Quantity)
	assert.InDelta(t, item.UnitPrice, oi.UnitPrice, 0.001)
	assert.InDelta(t, item.Price, oi.Price, 0.001)
}
