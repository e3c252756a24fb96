package domain

import (
	"errors"
	"fmt"
)

// OrderStatus is the lifecycle state of an order, identified by its slug.
//
// State transitions (role-gated, see TransitionAllowed):
//
//	pending ──────> shipped ──────> delivered
//	   │     ┌────────┘  │             │
//	   ├──> failed       │             │
//	   │      │          v             v
//	   └──────┴───> under-review <─────┘
//	                 │   │   │
//	                 │   │   └──> shipped (resume)
//	                 │   └──> cancelled
//	                 └──> refunded
type OrderStatus string

const (
	StatusPending     OrderStatus = "pending"
	StatusShipped     OrderStatus = "shipped"
	StatusDelivered   OrderStatus = "delivered"
	StatusFailed      OrderStatus = "failed"
	StatusUnderReview OrderStatus = "under-review"
	StatusCancelled   OrderStatus = "cancelled"
	StatusRefunded    OrderStatus = "refunded"
)

// Transition errors distinguish "this move does not exist" from "this move
// exists but not for you", so the API can answer 400 vs 403.
var (
	ErrTransitionUnknown   = errors.New("status transition not allowed")
	ErrTransitionForbidden = errors.New("status transition not permitted for role")
	ErrUnknownStatus       = errors.New("unknown order status")
)

// statusTransitions maps current status -> requested status -> roles allowed
// to perform the move. Absence at the first level means the status is final;
// absence at the second means the move does not exist for anyone.
var statusTransitions = map[OrderStatus]map[OrderStatus][]Role{
	StatusPending: {
		StatusShipped:     {RoleAdmin, RoleManager},
		StatusUnderReview: {RoleAdmin, RoleManager, RoleCustomer},
		StatusFailed:      {RoleAdmin, RoleManager},
	},
	StatusShipped: {
		StatusDelivered:   {RoleAdmin, RoleDelivery},
		StatusUnderReview: {RoleAdmin, RoleManager, RoleDelivery},
	},
	StatusDelivered: {
		StatusUnderReview: {RoleAdmin, RoleManager, RoleCustomer},
	},
	StatusUnderReview: {
		StatusShipped:   {RoleAdmin, RoleManager},
		StatusCancelled: {RoleAdmin, RoleManager},
		StatusRefunded:  {RoleAdmin, RoleManager},
		StatusFailed:    {RoleAdmin, RoleManager},
	},
	StatusFailed: {
		StatusUnderReview: {RoleAdmin, RoleManager, RoleCustomer},
	},
}

// AllOrderStatuses lists every valid status slug, in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	StatusPending,
	StatusShipped,
	StatusDelivered,
	StatusFailed,
	StatusUnderReview,
	StatusCancelled,
	StatusRefunded,
}

// ParseOrderStatus converts a slug to an OrderStatus.
func ParseOrderStatus(slug string) (OrderStatus, error) {
	s := OrderStatus(slug)
	for _, known := range AllOrderStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, slug)
}

// Title returns the human-readable form of the status slug, e.g.
// "under-review" -> "Under Review".
func (s OrderStatus) Title() string {
	titles := map[OrderStatus]string{
		StatusPending:     "Pending",
		StatusShipped:     "Shipped",
		StatusDelivered:   "Delivered",
		StatusFailed:      "Failed",
		StatusUnderReview: "Under Review",
		StatusCancelled:   "Cancelled",
		StatusRefunded:    "Refunded",
	}
	if t, ok := titles[s]; ok {
		return t
	}
	return string(s)
}

// TransitionAllowed validates a move from s to the requested status by the
// given role.
//
// Returns:
//   - nil when the transition exists and the role may perform it
//   - ErrTransitionUnknown when no such move exists from s
//   - ErrTransitionForbidden when the move exists but not for the role
func (s OrderStatus) TransitionAllowed(to OrderStatus, role Role) error {
	allowed, ok := statusTransitions[s]
	if !ok {
		return fmt.Errorf("%w: %s is a final status", ErrTransitionUnknown, s.Title())
	}

	roles, ok := allowed[to]
	if !ok {
		return fmt.Errorf("%w: from %s to %s", ErrTransitionUnknown, s.Title(), to.Title())
	}

	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return fmt.Errorf("%w: from %s to %s", ErrTransitionForbidden, s.Title(), to.Title())
}

// Intent is a customer-declared request that routes an order into review.
type Intent string

const (
	IntentCancellation Intent = "cancellation"
	IntentRefund       Intent = "refund"
)

// ErrIntentNotEligible is returned when an order's current status does not
// admit the requested intent.
var ErrIntentNotEligible = errors.New("intent not eligible at this stage")

// intentOrigins maps each intent to the statuses from which a customer may
// raise it.
var intentOrigins = map[Intent][]OrderStatus{
	IntentCancellation: {StatusPending, StatusFailed},
	IntentRefund:       {StatusDelivered},
}

// ParseIntent converts a string to an Intent.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentCancellation:
		return IntentCancellation, nil
	case IntentRefund:
		return IntentRefund, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrValidation, s)
	}
}

// EligibleFor reports whether the intent may be raised while the order is in
// the given status.
func (i Intent) EligibleFor(status OrderStatus) bool {
	for _, origin := range intentOrigins[i] {
		if origin == status {
			return true
		}
	}
	return false
}
