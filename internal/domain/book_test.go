package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBook(t *testing.T) *Book {
	t.Helper()
	book, err := NewBook(
		"The Left Hand of Darkness", "Ursula K. Le Guin",
		uuid.New(), 1969, false,
		"A lone envoy on a glacial planet.", "Ace Books",
		1, "English", uuid.New(),
		"978-0-306-40615-7", false, uuid.New(),
		15.00, 20,
	)
	require.NoError(t, err)
	return book
}

func TestNewBook(t *testing.T) {
	t.Parallel()

	book := validBook(t)
	assert.NotEqual(t, uuid.Nil, book.ID)
	assert.Equal(t, "9780306406157", book.ISBN, "ISBN should be stored compact")
	assert.False(t, book.CreatedAt.IsZero())
}

func TestBookValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Book)
		wantErr error
	}{
		{"valid", func(b *Book) {}, nil},
		{"empty title", func(b *Book) { b.Title = "" }, ErrEmptyTitle},
		{"empty author", func(b *Book) { b.Author = "" }, ErrEmptyAuthor},
		{"zero year", func(b *Book) { b.FirstPublicationYear = 0 }, ErrInvalidYear},
		{"future year", func(b *Book) { b.FirstPublicationYear = time.Now().Year() + 10 }, ErrYearInFuture},
		{"future year is fine when BC", func(b *Book) {
			b.FirstPublicationYear = 3000
			b.IsBC = true
		}, nil},
		{"zero edition", func(b *Book) { b.Edition = 0 }, ErrInvalidEdition},
		{"negative discount", func(b *Book) { b.Discount = -1 }, ErrInvalidDiscount},
		{"discount over 100", func(b *Book) { b.Discount = 101 }, ErrInvalidDiscount},
		{"zero price", func(b *Book) { b.BasePrice = 0 }, ErrInvalidBasePrice},
		{"blurb too long", func(b *Book) { b.Blurb = strings.Repeat("a", 1201) }, ErrBlurbTooLong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			book := validBook(t)
			tt.mutate(book)
			err := book.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBookPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base     float64
		discount int
		want     float64
	}{
		{15.00, 20, 12.00},
		{10.00, 0, 10.00},
		{10.00, 100, 0.00},
		{9.99, 33, 6.69},
		{19.95, 15, 16.96},
	}

	for _, tt := range tests {
		tt := tt
		book := validBook(t)
		book.BasePrice = tt.base
		book.Discount = tt.discount
		assert.InDelta(t, tt.want, book.Price(), 0.001,
			"base %.2f at %d%% off", tt.base, tt.discount)
	}
}

func TestBookPublicationYear(t *testing.T) {
	t.Parallel()

	book := validBook(t)
	book.FirstPublicationYear = 1969
	book.IsBC = false
	assert.Equal(t, "1969", book.PublicationYear())

	book.FirstPublicationYear = 380
	book.IsBC = true
	assert.Equal(t, "380 BC", book.PublicationYear())
}

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 12.35, Round2(12.345), 0.0001)
	assert.InDelta(t, 12.34, Round2(12.344), 0.0001)
	assert.InDelta(t, 0.0, Round2(0), 0.0001)
}
