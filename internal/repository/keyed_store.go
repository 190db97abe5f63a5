package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"tableside/internal/domain"
)

// DefaultMaxLines caps the number of distinct lines persisted per cart.
const DefaultMaxLines = 50

type persistedItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// KeyedStore stores JSON cart snapshots under "<prefix><scope>_cart" keys.
// A failed write triggers one cleanup sweep of the other same-prefix
// entries followed by exactly one retry; the sweep never touches keys
// outside the store's own prefix.
type KeyedStore struct {
	kv       KV
	prefix   string
	maxLines int
}

func NewKeyedStore(kv KV, prefix string, maxLines int) *KeyedStore {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &KeyedStore{kv: kv, prefix: prefix, maxLines: maxLines}
}

var _ CartStore = (*KeyedStore)(nil)

func (s *KeyedStore) key(scope string) string {
	return s.prefix + scope + "_cart"
}

func (s *KeyedStore) Save(ctx context.Context, scope string, cart domain.Cart) error {
	if len(cart.Items) > s.maxLines {
		return fmt.Errorf("%w: %d lines, max %d", ErrCapacityExceeded, len(cart.Items), s.maxLines)
	}

	items := make([]persistedItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, persistedItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	key := s.key(scope)
	err = s.kv.Set(ctx, key, string(data))
	if err == nil {
		return nil
	}
	log.Printf("cart store: write for %s failed, sweeping stale carts: %v", scope, err)
	s.sweep(ctx, key)

	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return nil
}

// sweep removes every other cart entry under the store's prefix to free
// space before the single retry.
func (s *KeyedStore) sweep(ctx context.Context, keep string) {
	keys, err := s.kv.Keys(ctx, s.prefix)
	if err != nil {
		log.Printf("cart store: sweep listing failed: %v", err)
		return
	}
	stale := keys[:0]
	for _, k := range keys {
		if k != keep {
			stale = append(stale, k)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := s.kv.Del(ctx, stale...); err != nil {
		log.Printf("cart store: sweep delete failed: %v", err)
	}
}

// Load returns the persisted cart for scope. A missing entry, a backend
// read error or a corrupt value all come back as an empty cart; corrupt
// data is treated as "no cart", never as a hard failure.
func (s *KeyedStore) Load(ctx context.Context, scope string) domain.Cart {
	raw, ok, err := s.kv.Get(ctx, s.key(scope))
	if err != nil {
		log.Printf("cart store: read for %s failed: %v", scope, err)
		return domain.Cart{}
	}
	if !ok {
		return domain.Cart{}
	}

	var items []persistedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("cart store: discarding corrupt cart for %s: %v", scope, err)
		return domain.Cart{}
	}

	cart := domain.Cart{Items: make([]domain.CartItem, 0, len(items))}
	for _, it := range items {
		cart.Items = append(cart.Items, domain.CartItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	return cart
}

func (s *KeyedStore) Clear(ctx context.Context, scope string) error {
	return s.kv.Del(ctx, s.key(scope))
}
