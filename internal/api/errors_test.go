package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagebound/bookstore-api/internal/domain"
	"github.com/pagebound/bookstore-api/internal/service/auth"
	"github.com/pagebound/bookstore-api/internal/service/order"
	"github.com/pagebound/bookstore-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, http.StatusInternalServerError},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden transition", domain.ErrTransitionForbidden, http.StatusForbidden},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"order not found", store.ErrOrderNotFound, http.StatusNotFound},
		{"book not found", store.ErrBookNotFound, http.StatusNotFound},
		{
			"wrapped not found",
			fmt.Errorf("loading order: %w", store.ErrOrderNotFound),
			http.StatusNotFound,
		},
		{"duplicate email", store.ErrEmailExists, http.StatusConflict},
		{"duplicate review", store.ErrReviewExists, http.StatusConflict},
		{"validation error", domain.ErrValidation, http.StatusBadRequest},
		{"unknown status", domain.ErrUnknownStatus, http.StatusBadRequest},
		{"unknown transition", domain.ErrTransitionUnknown, http.StatusBadRequest},
		{"ineligible intent", domain.ErrIntentNotEligible, http.StatusBadRequest},
		{"deliverer not crew", domain.ErrDelivererNotCrew, http.StatusBadRequest},
		{"empty cart", domain.ErrEmptyCart, http.StatusBadRequest},
		{"out of stock", domain.ErrBookOutOfStock, http.StatusBadRequest},
		{"discontinued", domain.ErrBookDiscontinued, http.StatusBadRequest},
		{"book referenced", domain.ErrBookReferenced, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

// Setting a field the role may not touch is a validation failure, not an
// authorization one: the client gets a 400 naming the disallowed fields.
func TestMapErrorToStatusCode_FieldPermission(t *testing.T) {
	t.Parallel()

	err := error(&order.FieldPermissionError{
		Role:   domain.RoleDelivery,
		Fields: []string{"deliverer", "intent"},
	})
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))

	msg := GetSafeErrorMessage(err)
	assert.Contains(t, msg, "deliverer")
	assert.Contains(t, msg, "intent")
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"invalid credentials", auth.ErrInvalidCredentials, "Invalid credentials"},
		{"order not found", store.ErrOrderNotFound, "Order not found"},
		{"duplicate review", store.ErrReviewExists, "You have already reviewed this book"},
		{"empty cart", domain.ErrEmptyCart, "No item was found in the cart"},
		{
			"deliverer not crew",
			domain.ErrDelivererNotCrew,
			"Deliverer must be a member of the delivery crew",
		},
		{
			"internal detail is hidden",
			errors.New("pq: connection refused"),
			"An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "required field",
			err: errors.New(
				"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"),
			want: "Invalid Email: required field",
		},
		{
			name: "email format",
			err: errors.New(
				"Key: 'RegisterRequest.Email' Error:Field validation for 'Email' failed on the 'email' tag"),
			want: "Invalid Email: invalid email format",
		},
		{
			name: "min length",
			err: errors.New(
				"Key: 'RegisterRequest.Password' Error:Field validation for 'Password' failed on the 'min' tag"),
			want: "Invalid Password: too short",
		},
		{
			name: "opaque error",
			err:  errors.New("unexpected EOF"),
			want: "Validation error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeValidationError(tt.err))
		})
	}
}
