package domain

import "slices"

// roleTargets lists the statuses a role may ever request, regardless of
// the current state. Requests outside this set are Forbidden; requests
// inside it but undefined for the current state are InvalidTransition.
var roleTargets = map[RoleType][]OrderStatusType{
	RoleClient:   {OrderStatusCancelled},
	RoleMerchant: {OrderStatusAccepted, OrderStatusCancelled},
	RoleCourier:  {OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled},
}

// transitions is the single source of truth for the order state machine.
// Per-endpoint role checks must not re-derive these rules.
var transitions = map[OrderStatusType]map[RoleType][]OrderStatusType{
	OrderStatusPending: {
		RoleClient:   {OrderStatusCancelled},
		RoleMerchant: {OrderStatusAccepted, OrderStatusCancelled},
		RoleCourier:  {OrderStatusInTransit, OrderStatusCancelled},
	},
	OrderStatusAccepted: {
		RoleCourier: {OrderStatusInTransit, OrderStatusCancelled},
	},
	OrderStatusInTransit: {
		RoleCourier: {OrderStatusDelivered},
	},
}

// NormalizeStatus folds the merchant-side "refused" input label into the
// cancelled terminal state; the two are the same state under a
// different input label.
func NormalizeStatus(s OrderStatusType) OrderStatusType {
	if s == OrderStatusRefused {
		return OrderStatusCancelled
	}
	return s
}

// ValidStatus reports whether s is an acceptable transition input label.
func ValidStatus(s OrderStatusType) bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusInTransit,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefused:
		return true
	}
	return false
}

// CheckTransition validates a requested transition against the table.
// The target must already be normalized. Admin bypasses the role
// restriction but not terminality: nothing moves out of delivered or
// cancelled.
func CheckTransition(current OrderStatusType, role RoleType, target OrderStatusType) error {
	if current.Terminal() {
		return ErrInvalidTransition
	}
	if role == RoleAdmin {
		return nil
	}

	allowedEver, ok := roleTargets[role]
	if !ok || !slices.Contains(allowedEver, target) {
		return ErrForbidden
	}

	byRole, ok := transitions[current]
	if !ok {
		return ErrInvalidTransition
	}
	targets, ok := byRole[role]
	if !ok || !slices.Contains(targets, target) {
		return ErrInvalidTransition
	}
	return nil
}
