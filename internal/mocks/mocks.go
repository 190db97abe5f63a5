package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tableside/internal/domain"
	"tableside/internal/infra"
)

type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Save(ctx context.Context, scope string, cart domain.Cart) error {
	args := m.Called(ctx, scope, cart)
	return args.Error(0)
}

func (m *MockCartStore) Load(ctx context.Context, scope string) domain.Cart {
	args := m.Called(ctx, scope)
	return args.Get(0).(domain.Cart)
}

func (m *MockCartStore) Clear(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

type MockOrderClient struct {
	mock.Mock
}

func (m *MockOrderClient) PlaceOrder(ctx context.Context, tableID string, items []domain.CartItem, total int64) (string, error) {
	args := m.Called(ctx, tableID, items, total)
	return args.String(0), args.Error(1)
}

func (m *MockOrderClient) GetOrderByTable(ctx context.Context, tableID string) (*domain.Order, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type MockMenuClient struct {
	mock.Mock
}

func (m *MockMenuClient) GetMenu(ctx context.Context) ([]infra.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]infra.MenuItem), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockKV struct {
	mock.Mock
}

func (m *MockKV) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockKV) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKV) Del(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
