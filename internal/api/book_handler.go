package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/store"
)

// BookHandler handles catalog endpoints. Reads are public; writes are
// restricted to staff at the routing layer.
type BookHandler struct {
	bookStore store.BookStore
	validator *validator.Validate
	sanitizer *bluemonday.Policy
}

// NewBookHandler creates a new BookHandler with the given dependencies.
func NewBookHandler(bookStore store.BookStore) *BookHandler {
	return &BookHandler{
		bookStore: bookStore,
		validator: validator.New(),
		// Blurbs are rendered as plain text; strip all markup.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// List handles GET /books with filtering, search, ordering and pagination.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	params := parseBookListParams(r.URL.Query())

	books, total, err := h.bookStore.List(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list books")
		return
	}

	params.Normalize()
	shared.RespondWithJSON(w, r, http.StatusOK, shared.ListResponse{
		Items: NewBookListResponse(books),
		Total: total,
		Page:  params.Page,
	})
}

// Get handles GET /books/{bookID}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID, err := getPathUUID(r, "bookID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), bookID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewBookResponse(book))
}

// Create handles POST /books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	book, err := domain.NewBook(
		req.Title,
		req.Author,
		req.GenreID,
		req.FirstPublicationYear,
		req.IsBC,
		h.sanitizer.Sanitize(req.Blurb),
		req.Publisher,
		req.Edition,
		req.Language,
		req.FormatID,
		req.ISBN,
		req.IsNew,
		req.StockID,
		req.BasePrice,
		req.Discount,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.bookStore.Create(r.Context(), book); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	created, err := h.bookStore.GetByID(r.Context(), book.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, NewBookResponse(created))
}

// Update handles PUT /books/{bookID}, replacing the record.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	bookID, err := getPathUUID(r, "bookID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req BookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), bookID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	isbn, err := domain.NormalizeISBN(req.ISBN)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	book.Title = req.Title
	book.Author = req.Author
	book.GenreID = req.GenreID
	book.FirstPublicationYear = req.FirstPublicationYear
	book.IsBC = req.IsBC
	book.Blurb = h.sanitizer.Sanitize(req.Blurb)
	book.Publisher = req.Publisher
	book.Edition = req.Edition
	book.Language = req.Language
	book.FormatID = req.FormatID
	book.ISBN = isbn
	book.IsNew = req.IsNew
	book.StockID = req.StockID
	book.BasePrice = req.BasePrice
	book.Discount = req.Discount
	book.UpdatedAt = time.Now().UTC()

	if err := book.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.bookStore.Update(r.Context(), book); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.bookStore.GetByID(r.Context(), bookID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewBookResponse(updated))
}

// Delete handles DELETE /books/{bookID}. Books referenced by existing orders
// cannot be removed.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bookID, err := getPathUUID(r, "bookID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.bookStore.Delete(r.Context(), bookID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}
