package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"tableside/internal/domain"
)

// WatcherRegistry keeps at most one live StatusWatcher per table scope and
// routes bus messages to it.
type WatcherRegistry struct {
	mu       sync.Mutex
	watchers map[string]*StatusWatcher
	factory  func(tableID string) *StatusWatcher
}

func NewWatcherRegistry(factory func(tableID string) *StatusWatcher) *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]*StatusWatcher),
		factory:  factory,
	}
}

// Watch returns the live watcher for a table, starting a fresh one if none
// exists or the previous order already finished.
func (r *WatcherRegistry) Watch(ctx context.Context, tableID string) *StatusWatcher {
	r.mu.Lock()
	w, ok := r.watchers[tableID]
	if ok && !w.Status().Terminal() {
		r.mu.Unlock()
		return w
	}
	if ok {
		w.Stop()
	}
	w = r.factory(tableID)
	r.watchers[tableID] = w
	r.mu.Unlock()

	w.Start(ctx)
	return w
}

func (r *WatcherRegistry) Get(tableID string) (*StatusWatcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watchers[tableID]
	return w, ok
}

// HandleEvent is the bus subscriber callback. Messages for tables nobody
// is watching are dropped; polling picks the order up if a watcher starts
// later.
func (r *WatcherRegistry) HandleEvent(ctx context.Context, pattern string, body []byte) error {
	switch pattern {
	case domain.RoutingStatusChanged:
		var ev domain.StatusChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("failed to parse status event: %w", err)
		}
		if w, ok := r.Get(ev.TableID); ok {
			w.ApplyEvent(ev)
		}
		return nil
	case domain.RoutingNewOrder:
		var ev domain.NewOrderEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("failed to parse new-order event: %w", err)
		}
		log.Printf("order %s placed for table %s", ev.OrderID, ev.TableID)
		return nil
	default:
		return nil
	}
}

func (r *WatcherRegistry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.watchers {
		w.Stop()
	}
}
