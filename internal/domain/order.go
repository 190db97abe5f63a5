package domain

import "time"

type OrderStatus string

const (
	StatusUnknown   OrderStatus = ""
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition is the single forward-only transition table used to
// reconcile status updates from every source (baseline fetch, poll tick,
// event feed). An update that is not a valid forward transition from the
// currently held status is stale or duplicated and must be discarded.
func CanTransition(from, to OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	switch from {
	case StatusUnknown:
		return to == StatusPending || to == StatusConfirmed || to == StatusCompleted || to == StatusCancelled
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// Order is the client-side projection of an order owned by the remote
// Order API. Status only ever moves forward through CanTransition; the
// projection is a read-through cache, never the source of truth.
type Order struct {
	OrderID   string      `json:"orderId"`
	TableID   string      `json:"tableId"`
	Items     []CartItem  `json:"items"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}
