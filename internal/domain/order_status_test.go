package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	for _, s := range AllOrderStatuses {
		parsed, err := ParseOrderStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseOrderStatus("teleported")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = ParseOrderStatus("")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestOrderStatusTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Under Review", StatusUnderReview.Title())
	assert.Equal(t, "Pending", StatusPending.Title())
	assert.Equal(t, "Refunded", StatusRefunded.Title())
}

func TestTransitionAllowed_Matrix(t *testing.T) {
	t.Parallel()

	// Every defined transition with the roles that may perform it. Roles not
	// listed must be refused with ErrTransitionForbidden.
	matrix := []struct {
		from, to OrderStatus
		roles    []Role
	}{
		{StatusPending, StatusShipped, []Role{RoleAdmin, RoleManager}},
		{StatusPending, StatusUnderReview, []Role{RoleAdmin, RoleManager, RoleCustomer}},
		{StatusPending, StatusFailed, []Role{RoleAdmin, RoleManager}},
		{StatusShipped, StatusDelivered, []Role{RoleAdmin, RoleDelivery}},
		{StatusShipped, StatusUnderReview, []Role{RoleAdmin, RoleManager, RoleDelivery}},
		{StatusDelivered, StatusUnderReview, []Role{RoleAdmin, RoleManager, RoleCustomer}},
		{StatusUnderReview, StatusShipped, []Role{RoleAdmin, RoleManager}},
		{StatusUnderReview, StatusCancelled, []Role{RoleAdmin, RoleManager}},
		{StatusUnderReview, StatusRefunded, []Role{RoleAdmin, RoleManager}},
		{StatusUnderReview, StatusFailed, []Role{RoleAdmin, RoleManager}},
		{StatusFailed, StatusUnderReview, []Role{RoleAdmin, RoleManager, RoleCustomer}},
	}

	allRoles := []Role{RoleAdmin, RoleManager, RoleDelivery, RoleCustomer}

	for _, row := range matrix {
		allowed := make(map[Role]bool, len(row.roles))
		for _, r := range row.roles {
			allowed[r] = true
		}

		for _, role := range allRoles {
			err := row.from.TransitionAllowed(row.to, role)
			if allowed[role] {
				assert.NoError(t, err,
					"%s -> %s should be allowed for %s", row.from, row.to, role)
			} else {
				assert.ErrorIs(t, err, ErrTransitionForbidden,
					"%s -> %s should be forbidden for %s", row.from, row.to, role)
			}
		}
	}
}

func TestTransitionAllowed_UnknownMoves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to OrderStatus
	}{
		{"pending cannot jump to delivered", StatusPending, StatusDelivered},
		{"shipped cannot regress to pending", StatusShipped, StatusPending},
		{"delivered cannot be reshipped", StatusDelivered, StatusShipped},
		{"under-review cannot go to delivered", StatusUnderReview, StatusDelivered},
		{"cancelled is final", StatusCancelled, StatusPending},
		{"refunded is final", StatusRefunded, StatusUnderReview},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// Even admins cannot take moves the matrix does not define.
			err := tt.from.TransitionAllowed(tt.to, RoleAdmin)
			assert.ErrorIs(t, err, ErrTransitionUnknown)
		})
	}
}

func TestIntentEligibility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		intent   Intent
		status   OrderStatus
		eligible bool
	}{
		{IntentCancellation, StatusPending, true},
		{IntentCancellation, StatusFailed, true},
		{IntentCancellation, StatusShipped, false},
		{IntentCancellation, StatusDelivered, false},
		{IntentCancellation, StatusUnderReview, false},
		{IntentRefund, StatusDelivered, true},
		{IntentRefund, StatusPending, false},
		{IntentRefund, StatusShipped, false},
		{IntentRefund, StatusCancelled, false},
	}

	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.eligible, tt.intent.EligibleFor(tt.status),
			"%s from %s", tt.intent, tt.status)
	}
}

func TestParseIntent(t *testing.T) {
	t.Parallel()

	got, err := ParseIntent("cancellation")
	require.NoError(t, err)
	assert.Equal(t, IntentCancellation, got)

	got, err = ParseIntent("refund")
	require.NoError(t, err)
	assert.Equal(t, IntentRefund, got)

	_, err = ParseIntent("exchange")
	assert.ErrorIs(t, err, ErrValidation)
}
