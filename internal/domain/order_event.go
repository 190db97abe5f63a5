package domain

import "time"

// Routing keys on the order events topic exchange.
const (
	RoutingStatusChanged = "order.status-changed"
	RoutingNewOrder      = "order.new"
)

// StatusChangedEvent is delivered over the event bus at least once and in
// no particular order; consumers reconcile it through CanTransition.
type StatusChangedEvent struct {
	OrderID   string      `json:"orderId"`
	TableID   string      `json:"tableId"`
	Status    OrderStatus `json:"status"`
	ChangedAt time.Time   `json:"changedAt"`
}

// NewOrderEvent announces an order placed for a table.
type NewOrderEvent struct {
	OrderID   string    `json:"orderId"`
	TableID   string    `json:"tableId"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}
