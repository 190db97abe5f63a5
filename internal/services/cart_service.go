package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tableside/internal/domain"
	"tableside/internal/infra"
	rabbit "tableside/internal/infra/rabbitmq"
	"tableside/internal/repository"
)

var ErrEmptyCart = errors.New("cart is empty")

// CartService owns the in-memory cart for every active scope and writes a
// snapshot through the store after each mutation. A failed persist never
// rolls the in-memory cart back; the returned error is a warning and the
// next successful save reconciles the store.
type CartService struct {
	mu    sync.Mutex
	carts map[string]domain.Cart

	store     repository.CartStore
	orders    infra.OrderClientInterface
	publisher rabbit.PublisherInterface
	maxLines  int
}

func NewCartService(store repository.CartStore, orders infra.OrderClientInterface, pub rabbit.PublisherInterface, maxLines int) *CartService {
	if maxLines <= 0 {
		maxLines = repository.DefaultMaxLines
	}
	return &CartService{
		carts:     make(map[string]domain.Cart),
		store:     store,
		orders:    orders,
		publisher: pub,
		maxLines:  maxLines,
	}
}

// loadLocked returns the cart for scope, pulling it from the store the
// first time the scope is seen after a restart. Callers hold s.mu.
func (s *CartService) loadLocked(ctx context.Context, scope string) domain.Cart {
	cart, ok := s.carts[scope]
	if !ok {
		cart = s.store.Load(ctx, scope)
		s.carts[scope] = cart
	}
	return cart
}

func (s *CartService) Get(ctx context.Context, scope string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, scope).Clone()
}

func (s *CartService) Total(ctx context.Context, scope string) int64 {
	return s.Get(ctx, scope).Total()
}

// AddItem merges quantity into an existing same-name line or appends a new
// one. A non-positive quantity is clamped to 1 so a line below one can
// never be created. Exceeding the distinct-line cap rejects the mutation
// entirely, leaving memory and store unchanged.
func (s *CartService) AddItem(ctx context.Context, scope string, item domain.CartItem, qty int64) (domain.Cart, error) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	cart := s.loadLocked(ctx, scope)

	merged := false
	for i := range cart.Items {
		if cart.Items[i].Name == item.Name {
			cart.Items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		if len(cart.Items) >= s.maxLines {
			out := cart.Clone()
			s.mu.Unlock()
			return out, fmt.Errorf("%w: %d lines", repository.ErrCapacityExceeded, s.maxLines)
		}
		item.Quantity = qty
		cart.Items = append(cart.Items, item)
	}
	s.carts[scope] = cart
	out := cart.Clone()
	s.mu.Unlock()

	return out, s.persist(ctx, scope, out)
}

// UpdateQuantity sets the quantity on one line. A quantity below one or an
// out-of-range index is ignored; dropping a line is RemoveItem's job.
func (s *CartService) UpdateQuantity(ctx context.Context, scope string, index int, qty int64) (domain.Cart, error) {
	s.mu.Lock()
	cart := s.loadLocked(ctx, scope)
	if qty < 1 || index < 0 || index >= len(cart.Items) {
		out := cart.Clone()
		s.mu.Unlock()
		return out, nil
	}
	cart.Items[index].Quantity = qty
	s.carts[scope] = cart
	out := cart.Clone()
	s.mu.Unlock()

	return out, s.persist(ctx, scope, out)
}

func (s *CartService) RemoveItem(ctx context.Context, scope string, index int) (domain.Cart, error) {
	s.mu.Lock()
	cart := s.loadLocked(ctx, scope)
	if index < 0 || index >= len(cart.Items) {
		out := cart.Clone()
		s.mu.Unlock()
		return out, nil
	}
	cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
	s.carts[scope] = cart
	out := cart.Clone()
	s.mu.Unlock()

	return out, s.persist(ctx, scope, out)
}

func (s *CartService) Clear(ctx context.Context, scope string) {
	s.mu.Lock()
	delete(s.carts, scope)
	s.mu.Unlock()
	if err := s.store.Clear(ctx, scope); err != nil {
		log.Printf("failed to clear stored cart for %s: %v", scope, err)
	}
}

// Checkout submits the cart to the Order API. The cart is cleared only
// after the API accepts the order; any failure leaves it intact so the
// user can retry.
func (s *CartService) Checkout(ctx context.Context, scope string) (domain.Order, error) {
	cart := s.Get(ctx, scope)
	if len(cart.Items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	total := cart.Total()
	orderID, err := s.orders.PlaceOrder(ctx, scope, cart.Items, total)
	if err != nil {
		return domain.Order{}, err
	}

	s.Clear(ctx, scope)

	order := domain.Order{
		OrderID:   orderID,
		TableID:   scope,
		Items:     cart.Items,
		Total:     total,
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}

	if s.publisher != nil {
		go s.publishNewOrderEvent(context.Background(), order)
	}

	return order, nil
}

func (s *CartService) publishNewOrderEvent(ctx context.Context, order domain.Order) {
	evt := domain.NewOrderEvent{
		OrderID:   order.OrderID,
		TableID:   order.TableID,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, domain.RoutingNewOrder, evt); err != nil {
		log.Printf("failed to publish new-order event: %v", err)
	}
}

func (s *CartService) persist(ctx context.Context, scope string, cart domain.Cart) error {
	if err := s.store.Save(ctx, scope, cart); err != nil {
		log.Printf("cart for %s is ahead of the store: %v", scope, err)
		return fmt.Errorf("cart not saved: %w", err)
	}
	return nil
}
