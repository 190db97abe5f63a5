package infra

import (
	"context"

	"tableside/internal/domain"
)

type OrderClientInterface interface {
	PlaceOrder(ctx context.Context, tableID string, items []domain.CartItem, total int64) (string, error)
	GetOrderByTable(ctx context.Context, tableID string) (*domain.Order, error)
}

type MenuClientInterface interface {
	GetMenu(ctx context.Context) ([]MenuItem, error)
}

var _ OrderClientInterface = (*OrderClient)(nil)
var _ MenuClientInterface = (*MenuClient)(nil)
