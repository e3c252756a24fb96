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

// ReviewHandler handles review endpoints nested under a book. Reads are
// public, writes require authentication, and a review may only be edited by
// its author or deleted by its author or an admin.
type ReviewHandler struct {
	reviewStore store.ReviewStore
	bookStore   store.BookStore
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
}

// NewReviewHandler creates a new ReviewHandler with the given dependencies.
func NewReviewHandler(reviewStore store.ReviewStore, bookStore store.BookStore) *ReviewHandler {
	return &ReviewHandler{
		reviewStore: reviewStore,
		bookStore:   bookStore,
		validator:   validator.New(),
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// List handles GET /books/{bookID}/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	bookID, err := getPathUUID(r, "bookID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Reviews of a missing book are a 404, not an empty page.
	if _, err := h.bookStore.GetByID(r.Context(), bookID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	params := parseReviewListParams(r.URL.Query())
	reviews, total, err := h.reviewStore.ListByBook(r.Context(), bookID, params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}

	params.Normalize()
	shared.RespondWithJSON(w, r, http.StatusOK, shared.ListResponse{
		Items: NewReviewListResponse(reviews),
		Total: total,
		Page:  params.Page,
	})
}

// Get handles GET /books/{bookID}/reviews/{reviewID}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, ok := h.reviewForPath(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewReviewResponse(review))
}

// Create handles POST /books/{bookID}/reviews. One review per user per book.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	bookID, err := getPathUUID(r, "bookID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if _, err := h.bookStore.GetByID(r.Context(), bookID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	review, err := domain.NewReview(
		actor.ID,
		bookID,
		req.Rating,
		h.sanitizer.Sanitize(req.Title),
		h.sanitizer.Sanitize(req.Comment),
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.reviewStore.Create(r.Context(), review); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	created, err := h.reviewStore.GetByID(r.Context(), review.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, NewReviewResponse(created))
}

// Update handles PUT /books/{bookID}/reviews/{reviewID}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	review, ok := h.reviewForPath(w, r)
	if !ok {
		return
	}
	if review.UserID != actor.ID {
		HandleAPIError(w, r, domain.ErrForbidden, "You may only edit your own review")
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	review.Rating = req.Rating
	review.Title = h.sanitizer.Sanitize(req.Title)
	review.Comment = h.sanitizer.Sanitize(req.Comment)
	review.UpdatedAt = time.Now().UTC()

	if err := review.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.reviewStore.Update(r.Context(), review); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.reviewStore.GetByID(r.Context(), review.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewReviewResponse(updated))
}

// Delete handles DELETE /books/{bookID}/reviews/{reviewID}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	review, ok := h.reviewForPath(w, r)
	if !ok {
		return
	}
	if review.UserID != actor.ID && actor.Role != domain.RoleAdmin {
		HandleAPIError(w, r, domain.ErrForbidden, "You may only delete your own review")
		return
	}

	if err := h.reviewStore.Delete(r.Context(), review.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// reviewForPath loads the review addressed by the path, enforcing that it
// belongs to the book in the path. A mismatch reads as not found.
func (h *ReviewHandler) reviewForPath(w http.ResponseWriter, r *http.Request) (*domain.Review, bool) {
	bookID, err := getPathUUID(r, "bookID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	reviewID, err := getPathUUID(r, "reviewID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	review, err := h.reviewStore.GetByID(r.Context(), reviewID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	if review.BookID != bookID {
		HandleAPIError(w, r, store.ErrReviewNotFound, "")
		return nil, false
	}
	return review, true
}
