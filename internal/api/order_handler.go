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

// OrderHandler handles order endpoints. Placement and updates go through the
// order service; listings are scoped to the caller's role.
type OrderHandler struct {
	orderService *order.Service
	orderStore   store.OrderStore
	validator    *validator.Validate
}

// NewOrderHandler creates a new OrderHandler with the given dependencies.
func NewOrderHandler(orderService *order.Service, orderStore store.OrderStore) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		orderStore:   orderStore,
		validator:    validator.New(),
	}
}

// List handles GET /orders. Customers see their own orders, delivery crew
// their assignments, staff everything (optionally narrowed by user_id or
// deliverer_id).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	params := parseOrderListParams(r.URL.Query())
	switch {
	case actor.Role.IsStaff():
		if s := r.URL.Query().Get("user_id"); s != "" {
			if id, err := uuid.Parse(s); err == nil {
				params.UserID = &id
			}
		}
		if s := r.URL.Query().Get("deliverer_id"); s != "" {
			if id, err := uuid.Parse(s); err == nil {
				params.DelivererID = &id
			}
		}
	case actor.Role == domain.RoleDelivery:
		params.DelivererID = &actor.ID
	default:
		params.UserID = &actor.ID
	}

	orders, total, err := h.orderStore.List(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list orders")
		return
	}

	params.Normalize()
	shared.RespondWithJSON(w, r, http.StatusOK, shared.ListResponse{
		Items: NewOrderListResponse(orders),
		Total: total,
		Page:  params.Page,
	})
}

// Place handles POST /orders, turning the caller's cart into a pending
// order delivered to one of their addresses.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	placed, err := h.orderService.PlaceOrder(r.Context(), actor.ID, req.DeliveryAddressID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewOrderResponse(placed))
}

// Get handles GET /orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	orderID, err := getPathUUID(r, "orderID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	o, err := h.orderService.GetOrder(r.Context(), actor, orderID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewOrderResponse(o))
}

// Update handles PATCH /orders/{orderID}. Which fields may be set depends on
// the caller's role; the service enforces the full update pipeline.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	orderID, err := getPathUUID(r, "orderID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req OrderUpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	updated, err := h.orderService.Update(r.Context(), actor, orderID, order.UpdateRequest{
		Status:      req.Status,
		DelivererID: req.Deliverer,
		AddressID:   req.DeliveryAddress,
		Intent:      req.Intent,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewOrderResponse(updated))
}

// ListItems handles GET /orders/{orderID}/items. Delivery crew see where an
// order goes, not what is in it.
func (h *OrderHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role == domain.RoleDelivery {
		HandleAPIError(w, r, domain.ErrForbidden, "Delivery crew may not view order contents")
		return
	}

	orderID, err := getPathUUID(r, "orderID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if _, err := h.orderService.GetOrder(r.Context(), actor, orderID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.orderStore.ListItems(r.Context(), orderID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list order items")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewOrderItemListResponse(items))
}

// ListHistory handles GET /orders/{orderID}/history.
func (h *OrderHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	orderID, err := getPathUUID(r, "orderID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if _, err := h.orderService.GetOrder(r.Context(), actor, orderID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	params := parseHistoryListParams(r.URL.Query())
	entries, total, err := h.orderStore.ListHistory(r.Context(), orderID, params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list order history")
		return
	}

	params.Normalize()
	shared.RespondWithJSON(w, r, http.StatusOK, shared.ListResponse{
		Items: NewOrderHistoryListResponse(entries),
		Total: total,
		Page:  params.Page,
	})
}
