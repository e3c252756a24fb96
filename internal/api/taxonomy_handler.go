package api

import (
	"net/http"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/store"
)

// TaxonomyHandler serves the read-only lookup listings (genres, stocks, book
// formats, order statuses, countries). All of them are public.
type TaxonomyHandler struct {
	taxonomyStore store.TaxonomyStore
}

// NewTaxonomyHandler creates a new TaxonomyHandler with the given dependencies.
func NewTaxonomyHandler(taxonomyStore store.TaxonomyStore) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyStore: taxonomyStore}
}

// List returns a handler serving GET /{kind} for one lookup table.
func (h *TaxonomyHandler) List(kind store.TaxonomyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.taxonomyStore.List(r.Context(), kind)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to list entries")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, NewTaxonomyListResponse(entries))
	}
}

// Get returns a handler serving GET /{kind}/{entryID} for one lookup table.
func (h *TaxonomyHandler) Get(kind store.TaxonomyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := getPathUUID(r, "entryID")
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}

		entry, err := h.taxonomyStore.GetByID(r.Context(), kind, entryID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, TaxonomyResponse{
			ID:      entry.ID,
			Slug:    entry.Slug,
			Title:   entry.Title,
			ISO3166: entry.ISO3166,
		})
	}
}
