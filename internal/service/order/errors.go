package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pagebound/bookstore-api/internal/domain"
)

// Common order service errors
var (
	// ErrAddressNotOwned indicates the referenced delivery address does not
	// belong to the order's customer.
	ErrAddressNotOwned = errors.New("delivery address does not belong to the customer")

	// ErrAddressLocked indicates the order has progressed past the point
	// where its delivery address may change.
	ErrAddressLocked = errors.New("delivery address can only change while the order is pending or failed")

	// ErrNothingToUpdate indicates the update request carried no fields.
	ErrNothingToUpdate = errors.New("no updatable field was provided")
)

// FieldPermissionError reports fields an actor's role is not allowed to set
// on an order update.
type FieldPermissionError struct {
	Role   domain.Role
	Fields []string
}

// Error implements the error interface.
func (e *FieldPermissionError) Error() string {
	fields := append([]string(nil), e.Fields...)
	sort.Strings(fields)
	return fmt.Sprintf("role %q may not set: %s", e.Role, strings.Join(fields, ", "))
}

// Unwrap ties field permission failures to the domain validation sentinel so
// the API layer maps them to 400.
func (e *FieldPermissionError) Unwrap() error {
	return domain.ErrValidation
}
