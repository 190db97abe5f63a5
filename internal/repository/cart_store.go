package repository

import (
	"context"
	"errors"

	"tableside/internal/domain"
)

var (
	// ErrCapacityExceeded is returned when a mutation would push a cart
	// past the configured maximum number of distinct lines. The cart is
	// left untouched, in memory and in the store.
	ErrCapacityExceeded = errors.New("cart capacity exceeded")

	// ErrPersistenceFailed is returned when a save still fails after the
	// cleanup sweep and single retry. The in-memory cart stays valid; the
	// caller should warn the user to complete checkout.
	ErrPersistenceFailed = errors.New("cart persistence failed")
)

// CartStore persists one cart per scope key (table id or guest session).
type CartStore interface {
	Save(ctx context.Context, scope string, cart domain.Cart) error
	Load(ctx context.Context, scope string) domain.Cart
	Clear(ctx context.Context, scope string) error
}

// KV is the low-level key-value backend a KeyedStore writes through.
// Set failures on a full backend are recoverable via the sweep in
// KeyedStore; Keys only ever needs to enumerate one namespace prefix.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
