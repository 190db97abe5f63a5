package services

import (
	"fmt"
	"time"

	"tableside/internal/domain"
)

func CreateTestItem(name string, price, qty int64) domain.CartItem {
	return domain.CartItem{Name: name, Price: price, Quantity: qty}
}

func CreateTestCart(lines int) domain.Cart {
	cart := domain.Cart{}
	for i := 0; i < lines; i++ {
		cart.Items = append(cart.Items, CreateTestItem(fmt.Sprintf("Item %d", i), 100, 1))
	}
	return cart
}

func CreateTestOrder(id, tableID string, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		OrderID:   id,
		TableID:   tableID,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

const (
	TestTableID  = "7"
	TestOrderID  = "ord-1"
	TestInterval = 10 * time.Millisecond
)
