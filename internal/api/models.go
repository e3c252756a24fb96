package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// NewUserResponse converts a domain user to its public view.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Role: string(u.Role)}
}

// GroupMemberRequest names the user to add to a role group.
type GroupMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// BookRequest defines the payload for creating or replacing a book.
type BookRequest struct {
	Title                string    `json:"title"                  validate:"required,max=500"`
	Author               string    `json:"author"                 validate:"required,max=500"`
	GenreID              uuid.UUID `json:"genre_id"               validate:"required"`
	FirstPublicationYear int       `json:"first_publication_year" validate:"required,min=1"`
	IsBC                 bool      `json:"is_bc"`
	Blurb                string    `json:"blurb"                  validate:"max=1200"`
	Publisher            string    `json:"publisher"              validate:"required,max=500"`
	Edition              int       `json:"edition"                validate:"required,min=1"`
	Language             string    `json:"language"               validate:"required,max=100"`
	FormatID             uuid.UUID `json:"format_id"              validate:"required"`
	ISBN                 string    `json:"isbn"                   validate:"required"`
	IsNew                bool      `json:"is_new"`
	StockID              uuid.UUID `json:"stock_id"               validate:"required"`
	BasePrice            float64   `json:"base_price"             validate:"required,gt=0"`
	Discount             int       `json:"discount"               validate:"min=0,max=100"`
}

// BookResponse is the public view of a catalog entry, with the derived
// selling price and joined taxonomy titles.
type BookResponse struct {
	ID                   uuid.UUID `json:"id"`
	Title                string    `json:"title"`
	Author               string    `json:"author"`
	Genre                string    `json:"genre"`
	FirstPublicationYear string    `json:"first_publication_year"`
	Blurb                string    `json:"blurb,omitempty"`
	Publisher            string    `json:"publisher"`
	Edition              int       `json:"edition"`
	Language             string    `json:"language"`
	Format               string    `json:"format"`
	ISBN                 string    `json:"isbn"`
	IsNew                bool      `json:"is_new"`
	Stock                string    `json:"stock"`
	BasePrice            float64   `json:"base_price"`
	Discount             int       `json:"discount"`
	Price                float64   `json:"price"`
	AverageRating        *float64  `json:"average_rating"`
}

// NewBookResponse converts a domain book to its public view.
func NewBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:                   b.ID,
		Title:                b.Title,
		Author:               b.Author,
		Genre:                b.GenreTitle,
		FirstPublicationYear: b.PublicationYear(),
		Blurb:                b.Blurb,
		Publisher:            b.Publisher,
		Edition:              b.Edition,
		Language:             b.Language,
		Format:               b.FormatTitle,
		ISBN:                 b.ISBN,
		IsNew:                b.IsNew,
		Stock:                b.StockSlug,
		BasePrice:            b.BasePrice,
		Discount:             b.Discount,
		Price:                b.Price(),
		AverageRating:        b.AverageRating,
	}
}

// NewBookListResponse converts a page of books.
func NewBookListResponse(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, NewBookResponse(b))
	}
	return out
}

// ReviewRequest defines the payload for creating or replacing a review.
type ReviewRequest struct {
	Rating  int    `json:"rating"  validate:"required,min=1,max=5"`
	Title   string `json:"title"   validate:"max=500"`
	Comment string `json:"comment" validate:"required,max=5000"`
}

// ReviewResponse is the public view of a review.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	BookID    uuid.UUID `json:"book_id"`
	User      string    `json:"user"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReviewResponse converts a domain review to its public view.
func NewReviewResponse(rv *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        rv.ID,
		BookID:    rv.BookID,
		User:      rv.UserEmail,
		Rating:    rv.Rating,
		Title:     rv.Title,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

// NewReviewListResponse converts a page of reviews.
func NewReviewListResponse(reviews []*domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, NewReviewResponse(rv))
	}
	return out
}

// CartItemRequest defines the payload for adding a book to the cart.
type CartItemRequest struct {
	BookID   uuid.UUID `json:"book_id"  validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

// CartItemUpdateRequest defines the payload for changing a cart line's
// quantity.
type CartItemUpdateRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartItemResponse is the public view of a cart line.
type CartItemResponse struct {
	ID         uuid.UUID `json:"id"`
	BookID     uuid.UUID `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BookAuthor string    `json:"book_author"`
	User       string    `json:"user,omitempty"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	Price      float64   `json:"price"`
}

// NewCartItemResponse converts a domain cart item to its public view.
func NewCartItemResponse(c *domain.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:         c.ID,
		BookID:     c.BookID,
		BookTitle:  c.BookTitle,
		BookAuthor: c.BookAuthor,
		User:       c.UserEmail,
		Quantity:   c.Quantity,
		UnitPrice:  c.UnitPrice,
		Price:      c.Price,
	}
}

// NewCartListResponse converts a page of cart items.
func NewCartListResponse(items []*domain.CartItem) []CartItemResponse {
	out := make([]CartItemResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewCartItemResponse(c))
	}
	return out
}

// AddressRequest defines the payload for creating or replacing an address.
type AddressRequest struct {
	Recipient      string    `json:"recipient"                 validate:"required,max=500"`
	CountryID      uuid.UUID `json:"country_id"                validate:"required"`
	StateProvince  string    `json:"state_province,omitempty"  validate:"max=500"`
	CityTown       string    `json:"city_town"                 validate:"required,max=500"`
	ZipCode        string    `json:"zip_code"                  validate:"required,max=50"`
	StreetName     string    `json:"street_name"               validate:"required,max=500"`
	Number         string    `json:"number"                    validate:"required,max=50"`
	ApartmentSuite string    `json:"apartment_suite,omitempty" validate:"max=500"`
	Notes          string    `json:"notes,omitempty"           validate:"max=2500"`
}

// AddressResponse is the public view of a delivery address.
type AddressResponse struct {
	ID             uuid.UUID `json:"id"`
	Recipient      string    `json:"recipient"`
	Country        string    `json:"country"`
	StateProvince  string    `json:"state_province,omitempty"`
	CityTown       string    `json:"city_town"`
	ZipCode        string    `json:"zip_code"`
	StreetName     string    `json:"street_name"`
	Number         string    `json:"number"`
	ApartmentSuite string    `json:"apartment_suite,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	User           string    `json:"user,omitempty"`
}

// NewAddressResponse converts a domain address to its public view.
func NewAddressResponse(a *domain.Address) AddressResponse {
	return AddressResponse{
		ID:             a.ID,
		Recipient:      a.Recipient,
		Country:        a.CountryTitle,
		StateProvince:  a.StateProvince,
		CityTown:       a.CityTown,
		ZipCode:        a.ZipCode,
		StreetName:     a.StreetName,
		Number:         a.Number,
		ApartmentSuite: a.ApartmentSuite,
		Notes:          a.Notes,
		User:           a.UserEmail,
	}
}

// NewAddressListResponse converts a page of addresses.
func NewAddressListResponse(addresses []*domain.Address) []AddressResponse {
	out := make([]AddressResponse, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, NewAddressResponse(a))
	}
	return out
}

// PlaceOrderRequest defines the payload for placing an order.
type PlaceOrderRequest struct {
	DeliveryAddressID uuid.UUID `json:"delivery_address" validate:"required"`
}

// OrderUpdateRequest defines the payload for PATCHing an order. All fields
// are optional; which may be set depends on the caller's role.
type OrderUpdateRequest struct {
	Status          *string    `json:"status,omitempty"`
	Deliverer       *uuid.UUID `json:"deliverer,omitempty"`
	DeliveryAddress *uuid.UUID `json:"delivery_address,omitempty"`
	Intent          *string    `json:"intent,omitempty"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID              uuid.UUID `json:"id"`
	User            string    `json:"user"`
	Deliverer       string    `json:"deliverer,omitempty"`
	DeliveryAddress string    `json:"delivery_address"`
	Status          string    `json:"status"`
	Total           float64   `json:"total"`
	WhenPlaced      time.Time `json:"when_placed"`
	WhenLastUpdate  time.Time `json:"when_last_update"`
}

// NewOrderResponse converts a domain order to its public view.
func NewOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		User:            o.UserEmail,
		Deliverer:       o.DelivererEmail,
		DeliveryAddress: o.AddressDisplay,
		Status:          string(o.Status),
		Total:           o.Total,
		WhenPlaced:      o.WhenPlaced,
		WhenLastUpdate:  o.WhenLastUpdate,
	}
}

// NewOrderListResponse converts a page of orders.
func NewOrderListResponse(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}

// OrderItemResponse is the public view of one order line.
type OrderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	BookID     uuid.UUID `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BookAuthor string    `json:"book_author"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	Price      float64   `json:"price"`
}

// NewOrderItemListResponse converts an order's lines.
func NewOrderItemListResponse(items []*domain.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemResponse{
			ID:         it.ID,
			BookID:     it.BookID,
			BookTitle:  it.BookTitle,
			BookAuthor: it.BookAuthor,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Price:      it.Price,
		})
	}
	return out
}

// OrderHistoryResponse is the public view of one audit row.
type OrderHistoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	PerformedBy string    `json:"performed_by,omitempty"`
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderHistoryListResponse converts an order's audit rows.
func NewOrderHistoryListResponse(entries []*domain.OrderHistory) []OrderHistoryResponse {
	out := make([]OrderHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, OrderHistoryResponse{
			ID:          e.ID,
			Status:      string(e.Status),
			PerformedBy: e.PerformedByEmail,
			Action:      e.Action,
			Timestamp:   e.Timestamp,
		})
	}
	return out
}

// TaxonomyResponse is the public view of a taxonomy entry.
type TaxonomyResponse struct {
	ID      uuid.UUID `json:"id"`
	Slug    string    `json:"slug"`
	Title   string    `json:"title"`
	ISO3166 string    `json:"iso_3166,omitempty"`
}

// NewTaxonomyListResponse converts a page of taxonomy entries.
func NewTaxonomyListResponse(entries []*domain.Taxonomy) []TaxonomyResponse {
	out := make([]TaxonomyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TaxonomyResponse{
			ID:      e.ID,
			Slug:    e.Slug,
			Title:   e.Title,
			ISO3166: e.ISO3166,
		})
	}
	return out
}
