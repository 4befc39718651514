package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, OrderStatusCancelled, NormalizeStatus(OrderStatusRefused))
	assert.Equal(t, OrderStatusPending, NormalizeStatus(OrderStatusPending))
	assert.Equal(t, OrderStatusDelivered, NormalizeStatus(OrderStatusDelivered))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(OrderStatusRefused))
	assert.True(t, ValidStatus(OrderStatusInTransit))
	assert.False(t, ValidStatus(OrderStatusType("shipped")))
	assert.False(t, ValidStatus(OrderStatusType("")))
}

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		name    string
		current OrderStatusType
		role    RoleType
		target  OrderStatusType
		wantErr error
	}{
		{"client cancels pending", OrderStatusPending, RoleClient, OrderStatusCancelled, nil},
		{"merchant accepts pending", OrderStatusPending, RoleMerchant, OrderStatusAccepted, nil},
		{"merchant cancels pending", OrderStatusPending, RoleMerchant, OrderStatusCancelled, nil},
		{"courier takes pending", OrderStatusPending, RoleCourier, OrderStatusInTransit, nil},
		{"courier takes accepted", OrderStatusAccepted, RoleCourier, OrderStatusInTransit, nil},
		{"courier delivers in transit", OrderStatusInTransit, RoleCourier, OrderStatusDelivered, nil},

		{"client cancels accepted", OrderStatusAccepted, RoleClient, OrderStatusCancelled, ErrInvalidTransition},
		{"client accepts own order", OrderStatusPending, RoleClient, OrderStatusAccepted, ErrForbidden},
		{"merchant ships order", OrderStatusPending, RoleMerchant, OrderStatusInTransit, ErrForbidden},
		{"merchant cancels in transit", OrderStatusInTransit, RoleMerchant, OrderStatusCancelled, ErrInvalidTransition},
		{"courier delivers pending", OrderStatusPending, RoleCourier, OrderStatusDelivered, ErrInvalidTransition},
		{"courier cancels in transit via status", OrderStatusInTransit, RoleCourier, OrderStatusCancelled, ErrInvalidTransition},

		{"delivered is terminal", OrderStatusDelivered, RoleAdmin, OrderStatusPending, ErrInvalidTransition},
		{"cancelled is terminal", OrderStatusCancelled, RoleCourier, OrderStatusInTransit, ErrInvalidTransition},
		{"admin bypasses role rules", OrderStatusPending, RoleAdmin, OrderStatusDelivered, nil},
		{"admin reverts accepted", OrderStatusAccepted, RoleAdmin, OrderStatusPending, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.current, tc.role, tc.target)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
