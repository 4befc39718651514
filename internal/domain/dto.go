package domain

type OrderStatusType string

const (
	OrderStatusPending   OrderStatusType = "pending"
	OrderStatusAccepted  OrderStatusType = "accepted"
	OrderStatusInTransit OrderStatusType = "in_transit"
	OrderStatusDelivered OrderStatusType = "delivered"
	OrderStatusCancelled OrderStatusType = "cancelled"
	// OrderStatusRefused is accepted as transition input only; it is
	// persisted as OrderStatusCancelled (see NormalizeStatus).
	OrderStatusRefused OrderStatusType = "refused"
)

// Terminal reports whether no further transitions are permitted.
func (s OrderStatusType) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// RoleType is supplied by the identity collaborator and trusted as-is.
type RoleType string

const (
	RoleClient RoleType = "client"
	// RoleMerchant is "commercant" in the legacy schema.
	RoleMerchant RoleType = "merchant"
	// RoleCourier is "livreur" in the legacy schema.
	RoleCourier RoleType = "courier"
	RoleAdmin   RoleType = "admin"
)

type PaymentMethodType string

const (
	PaymentMethodCash   PaymentMethodType = "cash"
	PaymentMethodCard   PaymentMethodType = "card"
	PaymentMethodWallet PaymentMethodType = "wallet"
)

type PaymentStatusType string

const (
	PaymentStatusPending PaymentStatusType = "pending"
	PaymentStatusPaid    PaymentStatusType = "paid"
)

// NotificationType keeps the tags of the legacy platform so existing
// mobile clients can keep branching on them.
type NotificationType string

const (
	NotificationNewOrder           NotificationType = "nouvelle_commande"
	NotificationOrderStatus        NotificationType = "statut_commande"
	NotificationDeliveryInProgress NotificationType = "livraison_en_cours"
	NotificationOrderDelivered     NotificationType = "commande_livree"
)

// Broadcast event names consumed by observer dashboards.
const (
	EventOrderAccepted    = "order-accepted"
	EventOrderCancelled   = "order-cancelled"
	EventOrderRefused     = "order-refused"
	EventDeliveryLocation = "delivery-location"
)
