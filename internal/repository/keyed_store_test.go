package repository_test

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

func testCart(lines int) domain.Cart {
	cart := domain.Cart{}
	for i := 0; i < lines; i++ {
		cart.Items = append(cart.Items, domain.CartItem{
			Name:     fmt.Sprintf("Item %d", i),
			Price:    100,
			Quantity: 1,
		})
	}
	return cart
}

func TestKeyedStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := repository.NewKeyedStore(memory.NewKV(0), "cart:", 50)

	cart := domain.Cart{Items: []domain.CartItem{
		{Name: "Latte", Price: 100, Quantity: 3},
		{Name: "Cake", Price: 250, Quantity: 1},
	}}
	require.NoError(t, store.Save(ctx, "7", cart))

	loaded := store.Load(ctx, "7")
	assert.Equal(t, cart.Items, loaded.Items)
	assert.Equal(t, cart.Total(), loaded.Total())
}

func TestKeyedStore_LoadMissingIsEmptyCart(t *testing.T) {
	store := repository.NewKeyedStore(memory.NewKV(0), "cart:", 50)
	loaded := store.Load(context.Background(), "never-saved")
	assert.Empty(t, loaded.Items)
}

func TestKeyedStore_LoadCorruptIsEmptyCart(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV(0)
	store := repository.NewKeyedStore(kv, "cart:", 50)

	require.NoError(t, kv.Set(ctx, "cart:7_cart", "{not json"))

	loaded := store.Load(ctx, "7")
	assert.Empty(t, loaded.Items)
}

func TestKeyedStore_SaveRejectsOverCapacity(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV(0)
	store := repository.NewKeyedStore(kv, "cart:", 50)

	err := store.Save(ctx, "7", testCart(51))
	assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	assert.Equal(t, 0, kv.Len(), "nothing may be persisted on a capacity refusal")
}

func TestKeyedStore_QuotaSweepRetrySucceeds(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV(200)
	store := repository.NewKeyedStore(kv, "cart:", 50)

	// Fill the quota with other table scopes.
	require.NoError(t, store.Save(ctx, "1", testCart(2)))
	require.NoError(t, kv.Set(ctx, "other:app_data", "untouchable"))

	// This write does not fit until the sweep clears scope 1.
	big := testCart(3)
	require.NoError(t, store.Save(ctx, "2", big))

	assert.Empty(t, store.Load(ctx, "1").Items, "other cart scopes are swept")
	assert.Len(t, store.Load(ctx, "2").Items, 3)

	// The sweep is prefix-scoped: unrelated keys survive.
	v, ok, err := kv.Get(ctx, "other:app_data")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "untouchable", v)
}

func TestKeyedStore_PersistenceFailureAfterRetry(t *testing.T) {
	ctx := context.Background()
	kv := new(mocks.MockKV)
	kv.On("Set", ctx, "cart:7_cart", mock.AnythingOfType("string")).Return(errors.New("disk full")).Twice()
	kv.On("Keys", ctx, "cart:").Return([]string{"cart:7_cart", "cart:9_cart"}, nil).Once()
	kv.On("Del", ctx, []string{"cart:9_cart"}).Return(nil).Once()

	store := repository.NewKeyedStore(kv, "cart:", 50)
	err := store.Save(ctx, "7", testCart(1))
	assert.ErrorIs(t, err, repository.ErrPersistenceFailed)
	kv.AssertExpectations(t)
}
