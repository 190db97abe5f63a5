package http

import "tableside/internal/domain"

type AddItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    int64  `json:"price" binding:"min=0"`
	Quantity int64  `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

type CartResponse struct {
	Items   []domain.CartItem `json:"items"`
	Total   int64             `json:"total"`
	Warning string            `json:"warning,omitempty"`
}

type CheckoutResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Total   int64  `json:"total"`
}

type SessionResponse struct {
	SessionID string `json:"sessionId"`
}
