package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/service/order"
	"github.com/pagebound/bookstore-api/internal/store"
)

// AddressHandler handles delivery address endpoints. Customers manage their
// own addresses; staff may browse everyone's.
type AddressHandler struct {
	addressStore store.AddressStore
	validator    *validator.Validate
}

// NewAddressHandler creates a new AddressHandler with the given dependencies.
func NewAddressHandler(addressStore store.AddressStore) *AddressHandler {
	return &AddressHandler{
		addressStore: addressStore,
		validator:    validator.New(),
	}
}

// List handles GET /addresses. Staff see all addresses and may narrow by
// user_id; everyone else sees only their own.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	params := store.AddressListParams{ListParams: parseListParams(r.URL.Query())}
	if actor.Role.IsStaff() {
		if s := r.URL.Query().Get("user_id"); s != "" {
			if id, err := uuid.Parse(s); err == nil {
				params.UserID = &id
			}
		}
	} else {
		params.UserID = &actor.ID
	}

	addresses, total, err := h.addressStore.List(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list addresses")
		return
	}

	params.Normalize()
	shared.RespondWithJSON(w, r, http.StatusOK, shared.ListResponse{
		Items: NewAddressListResponse(addresses),
		Total: total,
		Page:  params.Page,
	})
}

// Create handles POST /addresses.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req AddressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	address, err := domain.NewAddress(
		actor.ID,
		req.Recipient,
		req.CountryID,
		req.StateProvince,
		req.CityTown,
		req.ZipCode,
		req.StreetName,
		req.Number,
		req.ApartmentSuite,
		req.Notes,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.addressStore.Create(r.Context(), address); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	created, err := h.addressStore.GetByID(r.Context(), address.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, NewAddressResponse(created))
}

// Get handles GET /addresses/{addressID}.
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, address, ok := h.addressForPath(w, r, false)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewAddressResponse(address))
}

// Update handles PUT /addresses/{addressID}, replacing the record.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, address, ok := h.addressForPath(w, r, true)
	if !ok {
		return
	}

	var req AddressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	address.Recipient = req.Recipient
	address.CountryID = req.CountryID
	address.StateProvince = req.StateProvince
	address.CityTown = req.CityTown
	address.ZipCode = req.ZipCode
	address.StreetName = req.StreetName
	address.Number = req.Number
	address.ApartmentSuite = req.ApartmentSuite
	address.Notes = req.Notes
	address.UpdatedAt = time.Now().UTC()

	if err := address.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.addressStore.Update(r.Context(), address); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.addressStore.GetByID(r.Context(), address.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewAddressResponse(updated))
}

// Delete handles DELETE /addresses/{addressID}. Addresses referenced by
// orders cannot be removed.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, address, ok := h.addressForPath(w, r, true)
	if !ok {
		return
	}

	if err := h.addressStore.Delete(r.Context(), address.ID); err != nil {
		HandleAPIError(w, r, err, "Address is in use and cannot be deleted")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// addressForPath loads the address addressed by the path. Owners and admins
// have full access, other staff read-only, everyone else sees not found.
func (h *AddressHandler) addressForPath(w http.ResponseWriter, r *http.Request, mutate bool) (order.Actor, *domain.Address, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return order.Actor{}, nil, false
	}

	addressID, err := getPathUUID(r, "addressID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return order.Actor{}, nil, false
	}

	address, err := h.addressStore.GetByID(r.Context(), addressID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return order.Actor{}, nil, false
	}

	if address.UserID != actor.ID {
		switch {
		case actor.Role == domain.RoleAdmin:
			// full access
		case actor.Role.IsStaff() && !mutate:
			// read-only access
		case actor.Role.IsStaff():
			HandleAPIError(w, r, domain.ErrForbidden, "Managers may not modify customer addresses")
			return order.Actor{}, nil, false
		default:
			HandleAPIError(w, r, store.ErrAddressNotFound, "")
			return order.Actor{}, nil, false
		}
	}

	return actor, address, true
}
