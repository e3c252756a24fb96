package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pagebound/bookstore-api/internal/api/shared"
	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/service/auth"
	"github.com/pagebound/bookstore-api/internal/service/order"
	"github.com/pagebound/bookstore-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so handlers
// never leak internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, domain.ErrTransitionForbidden),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors. Field-permission failures wrap the validation
	// sentinel and surface here, listing the disallowed fields.
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrTransitionUnknown),
		errors.Is(err, domain.ErrIntentNotEligible),
		errors.Is(err, domain.ErrDelivererNotCrew),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrBookOutOfStock),
		errors.Is(err, domain.ErrBookDiscontinued),
		errors.Is(err, domain.ErrBookReferenced),
		errors.Is(err, domain.ErrInvalidISBN),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var fieldErr *order.FieldPermissionError
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.As(err, &fieldErr):
		return fieldErr.Error()

	case errors.Is(err, domain.ErrTransitionForbidden):
		return "Status transition not permitted for your role"

	case errors.Is(err, domain.ErrForbidden):
		return "Operation not permitted"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrBookNotFound):
		return "Book not found"
	case errors.Is(err, store.ErrReviewNotFound):
		return "Review not found"
	case errors.Is(err, store.ErrCartItemNotFound):
		return "Cart item not found"
	case errors.Is(err, store.ErrAddressNotFound):
		return "Address not found"
	case errors.Is(err, store.ErrOrderNotFound):
		return "Order not found"
	case errors.Is(err, store.ErrTaxonomyNotFound):
		return "Not found"
	case store.IsNotFoundError(err):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrISBNExists):
		return "A book with this ISBN already exists"
	case errors.Is(err, store.ErrEditionExists):
		return "This edition of the book already exists"
	case errors.Is(err, store.ErrReviewExists):
		return "You have already reviewed this book"
	case errors.Is(err, store.ErrCartItemExists):
		return "This book is already in your cart"
	case errors.Is(err, store.ErrAddressExists):
		return "An identical address already exists"

	case errors.Is(err, domain.ErrEmptyCart):
		return "No item was found in the cart"
	case errors.Is(err, domain.ErrBookOutOfStock):
		return "Book is currently out of stock"
	case errors.Is(err, domain.ErrBookDiscontinued):
		return "Book is discontinued and no longer available"
	case errors.Is(err, domain.ErrDelivererNotCrew):
		return "Deliverer must be a member of the delivery crew"
	case errors.Is(err, domain.ErrBookReferenced):
		return "Book appears in existing orders and cannot be deleted"
	case errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrTransitionUnknown),
		errors.Is(err, domain.ErrIntentNotEligible),
		errors.Is(err, domain.ErrInvalidISBN),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and writes a sanitized response,
// logging the full error. An empty userMessage falls back to the mapped safe
// message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing internal struct paths.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// "Key: 'LoginRequest.Email' Error:Field validation for 'Email'
		// failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}
