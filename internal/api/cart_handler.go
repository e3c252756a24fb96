package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/service/order"
	"github.com/pagebound/bookstore-api/internal/store"
)

// CartHandler handles shopping cart endpoints. Customers manage their own
// cart; managers may browse all carts read-only; admins have full access.
type CartHandler struct {
	cartStore store.CartStore
	bookStore store.BookStore
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given dependencies.
func NewCartHandler(cartStore store.CartStore, bookStore store.BookStore) *CartHandler {
	return &CartHandler{
		cartStore: cartStore,
		bookStore: bookStore,
		validator: validator.New(),
	}
}

// List handles GET /cart. Staff see all carts and may narrow by user_id;
// everyone else sees only their own.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	params := parseCartListParams(r.URL.Query())
	if actor.Role.IsStaff() {
		if s := r.URL.Query().Get("user_id"); s != "" {
			if id, err := uuid.Parse(s); err == nil {
				params.UserID = &id
			}
		}
	} else {
		params.UserID = &actor.ID
	}

	items, total, err := h.cartStore.List(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cart")
		return
	}

	params.Normalize()
	shared.RespondWithJSON(w, r, http.StatusOK, shared.ListResponse{
		Items: NewCartListResponse(items),
		Total: total,
		Page:  params.Page,
	})
}

// Create handles POST /cart, adding a book to the caller's cart. The unit
// price is captured from the book's current selling price.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), req.BookID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := domain.NewCartItem(actor.ID, book, req.Quantity)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.cartStore.Create(r.Context(), item); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	created, err := h.cartStore.GetByID(r.Context(), item.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, NewCartItemResponse(created))
}

// Get handles GET /cart/{itemID}.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, item, ok := h.itemForPath(w, r, false)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewCartItemResponse(item))
}

// Update handles PATCH /cart/{itemID}, changing the quantity. The line price
// is recomputed from the captured unit price.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, item, ok := h.itemForPath(w, r, true)
	if !ok {
		return
	}

	var req CartItemUpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := item.SetQuantity(req.Quantity); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.cartStore.Update(r.Context(), item); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.cartStore.GetByID(r.Context(), item.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewCartItemResponse(updated))
}

// Delete handles DELETE /cart/{itemID}.
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, item, ok := h.itemForPath(w, r, true)
	if !ok {
		return
	}

	if err := h.cartStore.Delete(r.Context(), item.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// Flush handles DELETE /cart, emptying the caller's cart. An already empty
// cart is a bad request, so the client learns nothing happened.
func (h *CartHandler) Flush(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	deleted, err := h.cartStore.Flush(r.Context(), actor.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to empty cart")
		return
	}
	if deleted == 0 {
		HandleAPIError(w, r, domain.ErrEmptyCart, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// itemForPath loads the cart item addressed by the path and applies the
// access rules: owners and admins in full, managers read-only, everyone else
// sees not found. mutate toggles the manager read-only restriction.
func (h *CartHandler) itemForPath(w http.ResponseWriter, r *http.Request, mutate bool) (order.Actor, *domain.CartItem, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return order.Actor{}, nil, false
	}

	itemID, err := getPathUUID(r, "itemID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return order.Actor{}, nil, false
	}

	item, err := h.cartStore.GetByID(r.Context(), itemID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return order.Actor{}, nil, false
	}

	if item.UserID != actor.ID {
		switch {
		case actor.Role == domain.RoleAdmin:
			// full access
		case actor.Role == domain.RoleManager && !mutate:
			// read-only access
		case actor.Role == domain.RoleManager:
			HandleAPIError(w, r, domain.ErrForbidden, "Managers may not modify customer carts")
			return order.Actor{}, nil, false
		default:
			HandleAPIError(w, r, store.ErrCartItemNotFound, "")
			return order.Actor{}, nil, false
		}
	}

	return actor, item, true
}
