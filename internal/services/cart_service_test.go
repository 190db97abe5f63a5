package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tableside/internal/domain"
	"tableside/internal/mocks"
	"tableside/internal/repository"
	"tableside/internal/repository/memory"
)

func newTestCartService(orders *mocks.MockOrderClient) *CartService {
	store := repository.NewKeyedStore(memory.NewKV(0), "cart:", repository.DefaultMaxLines)
	return NewCartService(store, orders, nil, repository.DefaultMaxLines)
}

func expectedTotal(cart domain.Cart) int64 {
	var sum int64
	for _, it := range cart.Items {
		sum += it.Price * it.Quantity
	}
	return sum
}

func TestCartService_TotalNeverDrifts(t *testing.T) {
	ctx := context.Background()
	s := newTestCartService(nil)

	check := func(cart domain.Cart) {
		assert.Equal(t, expectedTotal(cart), cart.Total())
	}

	cart, err := s.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), 1)
	require.NoError(t, err)
	check(cart)

	cart, err = s.AddItem(ctx, TestTableID, CreateTestItem("Cake", 250, 0), 2)
	require.NoError(t, err)
	check(cart)

	cart, err = s.UpdateQuantity(ctx, TestTableID, 0, 5)
	require.NoError(t, err)
	check(cart)

	cart, err = s.RemoveItem(ctx, TestTableID, 1)
	require.NoError(t, err)
	check(cart)

	assert.Equal(t, int64(500), cart.Total())
}

func TestCartService_AddSameNameMergesLines(t *testing.T) {
	ctx := context.Background()
	s := newTestCartService(nil)

	_, err := s.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), 1)
	require.NoError(t, err)
	cart, err := s.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(3), cart.Items[0].Quantity)
	assert.Equal(t, int64(300), cart.Total())
}

func TestCartService_AddClampsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	s := newTestCartService(nil)

	cart, err := s.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), -3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1), cart.Items[0].Quantity)
}

func TestCartService_UpdateBelowOneIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestCartService(nil)

	_, err := s.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), 2)
	require.NoError(t, err)

	for _, qty := range []int64{0, -1} {
		cart, err := s.UpdateQuantity(ctx, TestTableID, 0, qty)
		require.NoError(t, err)
		assert.Equal(t, int64(2), cart.Items[0].Quantity)
	}

	cart, err := s.UpdateQuantity(ctx, TestTableID, 99, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cart.Items[0].Quantity)
	assert.Equal(t, int64(200), cart.Total())
}

func TestCartService_CapacityRejectsNewLineEntirely(t *testing.T) {
	ctx := context.Background()
	s := newTestCartService(nil)

	for i := 0; i < repository.DefaultMaxLines; i++ {
		_, err := s.AddItem(ctx, TestTableID, CreateTestItem(fmt.Sprintf("Item %d", i), 100, 0), 1)
		require.NoError(t, err)
	}

	cart, err := s.AddItem(ctx, TestTableID, CreateTestItem("One Too Many", 100, 0), 1)
	assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	assert.Len(t, cart.Items, repository.DefaultMaxLines)

	// Neither memory nor the persisted snapshot picked up the 51st line.
	assert.Len(t, s.Get(ctx, TestTableID).Items, repository.DefaultMaxLines)

	// Merging into an existing line still works at capacity.
	cart, err = s.AddItem(ctx, TestTableID, CreateTestItem("Item 0", 100, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cart.Items[0].Quantity)
}

func TestCartService_PersistFailureWarnsWithoutRollback(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockCartStore)
	store.On("Load", ctx, TestTableID).Return(domain.Cart{})
	store.On("Save", ctx, TestTableID, mock.AnythingOfType("domain.Cart")).Return(repository.ErrPersistenceFailed)

	s := NewCartService(store, nil, nil, repository.DefaultMaxLines)

	cart, err := s.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), 1)
	assert.ErrorIs(t, err, repository.ErrPersistenceFailed)
	require.Len(t, cart.Items, 1, "in-memory cart stays ahead of the store")
	assert.Len(t, s.Get(ctx, TestTableID).Items, 1)
	store.AssertExpectations(t)
}

func TestCartService_SurvivesRestartThroughStore(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV(0)
	store := repository.NewKeyedStore(kv, "cart:", repository.DefaultMaxLines)

	first := NewCartService(store, nil, nil, repository.DefaultMaxLines)
	_, err := first.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), 2)
	require.NoError(t, err)

	second := NewCartService(store, nil, nil, repository.DefaultMaxLines)
	cart := second.Get(ctx, TestTableID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(200), cart.Total())
}

func TestCartService_Checkout(t *testing.T) {
	tests := []struct {
		name          string
		prepare       func(ctx context.Context, s *CartService)
		setupOrders   func(orders *mocks.MockOrderClient)
		expectedError string
		cartEmptyWant bool
	}{
		{
			name: "success clears cart",
			prepare: func(ctx context.Context, s *CartService) {
				s.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), 2)
			},
			setupOrders: func(orders *mocks.MockOrderClient) {
				orders.On("PlaceOrder", mock.Anything, TestTableID, mock.Anything, int64(200)).Return(TestOrderID, nil)
			},
			cartEmptyWant: true,
		},
		{
			name:          "empty cart is rejected",
			prepare:       func(ctx context.Context, s *CartService) {},
			setupOrders:   func(orders *mocks.MockOrderClient) {},
			expectedError: "cart is empty",
			cartEmptyWant: true,
		},
		{
			name: "api failure keeps cart intact",
			prepare: func(ctx context.Context, s *CartService) {
				s.AddItem(ctx, TestTableID, CreateTestItem("Latte", 100, 0), 2)
			},
			setupOrders: func(orders *mocks.MockOrderClient) {
				orders.On("PlaceOrder", mock.Anything, TestTableID, mock.Anything, int64(200)).Return("", errors.New("connection refused"))
			},
			expectedError: "connection refused",
			cartEmptyWant: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			orders := new(mocks.MockOrderClient)
			tt.setupOrders(orders)

			s := newTestCartService(orders)
			tt.prepare(ctx, s)

			order, err := s.Checkout(ctx, TestTableID)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, TestOrderID, order.OrderID)
				assert.Equal(t, domain.StatusPending, order.Status)
			}

			if tt.cartEmptyWant {
				assert.Empty(t, s.Get(ctx, TestTableID).Items)
			} else {
				assert.NotEmpty(t, s.Get(ctx, TestTableID).Items)
			}
			orders.AssertExpectations(t)
		})
	}
}
