package services

import (
	"context"
	"log"
	"sync"
	"time"

	"tableside/internal/domain"
	"tableside/internal/infra"
)

// StatusWatcher tracks one table's order by merging two unordered
// at-least-once sources, the event feed and a fixed-interval polling
// fallback, into a single monotonic status. domain.CanTransition is the
// only ordering mechanism; anything it rejects is a stale or duplicate
// read and is dropped.
type StatusWatcher struct {
	client      infra.OrderClientInterface
	tableID     string
	interval    time.Duration
	onConfirmed func(domain.Order)

	mu       sync.Mutex
	order    domain.Order
	active   bool
	notified bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewStatusWatcher(client infra.OrderClientInterface, tableID string, interval time.Duration, onConfirmed func(domain.Order)) *StatusWatcher {
	return &StatusWatcher{
		client:      client,
		tableID:     tableID,
		interval:    interval,
		onConfirmed: onConfirmed,
		order:       domain.Order{TableID: tableID},
		active:      true,
	}
}

// Start performs the baseline fetch, then polls until a terminal status is
// reached, Stop is called, or ctx ends. A baseline that is already
// confirmed still raises the one-time confirmation; the user missed the
// transition, not the watcher.
func (w *StatusWatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	if !w.active || w.cancel != nil || w.order.Status.Terminal() {
		w.mu.Unlock()
		cancel()
		return
	}
	w.cancel = cancel
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	w.fetch(ctx)

	go func() {
		defer close(done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.fetch(ctx)
			}
		}
	}()
}

// Stop tears the watcher down. Any fetch or event completing afterwards
// finds active false and is discarded.
func (w *StatusWatcher) Stop() {
	w.mu.Lock()
	w.active = false
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once the poll loop has exited.
func (w *StatusWatcher) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Order returns the current projection snapshot.
func (w *StatusWatcher) Order() domain.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.order
}

func (w *StatusWatcher) Status() domain.OrderStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.order.Status
}

func (w *StatusWatcher) fetch(ctx context.Context) {
	ord, err := w.client.GetOrderByTable(ctx, w.tableID)
	if err != nil {
		// Held status is never overwritten on failure; next tick retries.
		log.Printf("status poll for table %s failed: %v", w.tableID, err)
		return
	}
	if ord == nil {
		return
	}

	w.mu.Lock()
	if w.active && w.order.OrderID == "" {
		w.order.OrderID = ord.OrderID
		w.order.Items = ord.Items
		w.order.Total = ord.Total
		w.order.CreatedAt = ord.CreatedAt
	}
	w.mu.Unlock()

	w.Apply(ord.Status)
}

// Apply merges one status observation from either source. It reports
// whether the observation advanced the held status; false means it was
// stale, duplicated, or arrived after teardown.
func (w *StatusWatcher) Apply(status domain.OrderStatus) bool {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return false
	}
	if !domain.CanTransition(w.order.Status, status) {
		w.mu.Unlock()
		return false
	}
	w.order.Status = status

	var notify func(domain.Order)
	if status == domain.StatusConfirmed && !w.notified {
		w.notified = true
		notify = w.onConfirmed
	}
	if status.Terminal() && w.cancel != nil {
		w.cancel()
	}
	snapshot := w.order
	w.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
	return true
}

// ApplyEvent feeds a bus message through the same merge as polling.
func (w *StatusWatcher) ApplyEvent(ev domain.StatusChangedEvent) bool {
	if ev.TableID != w.tableID {
		return false
	}
	w.mu.Lock()
	if w.active && w.order.OrderID == "" && ev.OrderID != "" {
		w.order.OrderID = ev.OrderID
	}
	w.mu.Unlock()
	return w.Apply(ev.Status)
}
