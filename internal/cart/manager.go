// Package cart owns the canonical list of bag line items. All views
// hold read snapshots only; every mutation goes through the Manager,
// which persists the full cart and broadcasts the fresh snapshot to
// its subscribers.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/velvetvogue/storefront/internal/domain"
	"github.com/velvetvogue/storefront/internal/notify"
	"github.com/velvetvogue/storefront/internal/store"
)

// Key is where the serialized cart lives in the persistent store.
const Key = "vv_cart"

// Listener receives the fresh snapshot after each mutation. Listeners
// are called synchronously, in no particular order.
type Listener func(items []domain.LineItem)

// Manager is the cart state manager. Construct one per process with
// NewManager and share it between the views.
type Manager struct {
	kv       store.KV
	notifier notify.Notifier
	log      *slog.Logger

	mu  sync.Mutex // serializes read-modify-write cycles
	sfg singleflight.Group

	subMu  sync.Mutex
	subs   map[int]Listener
	nextID int
}

func NewManager(kv store.KV, notifier notify.Notifier, log *slog.Logger) *Manager {
	return &Manager{
		kv:       kv,
		notifier: notifier,
		log:      log,
		subs:     make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns its unsubscribe handle.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// Get returns the current snapshot. A missing key or a record that no
// longer decodes degrades to an empty cart; corruption must never
// break navigation, so no error is surfaced here.
func (m *Manager) Get(ctx context.Context) []domain.LineItem {
	v, _, _ := m.sfg.Do(Key, func() (interface{}, error) {
		return m.load(ctx), nil
	})
	return v.([]domain.LineItem)
}

func (m *Manager) load(ctx context.Context) []domain.LineItem {
	data, err := m.kv.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.LineItem{}
	}
	if err != nil {
		m.log.Warn("cart read failed, showing empty bag", "error", err)
		return []domain.LineItem{}
	}
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		m.log.Warn("cart record does not decode, showing empty bag", "error", err)
		return []domain.LineItem{}
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	return items
}

// Add puts one unit of the product in the bag. A product already in
// the bag with the same size has its quantity bumped, capped at
// MaxQty. Raises the "added to bag" toast.
func (m *Manager) Add(ctx context.Context, p domain.Product) {
	size := p.Size
	if size == "" {
		size = domain.DefaultSize
	}
	image := p.Image
	if image == "" {
		image = domain.PlaceholderImage
	}

	m.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		for i := range items {
			if items[i].ID == p.ID && items[i].Size == size {
				if items[i].Qty < domain.MaxQty {
					items[i].Qty++
				}
				return items
			}
		}
		return append(items, domain.LineItem{
			ID:    p.ID,
			Size:  size,
			Name:  p.Name,
			Price: p.Price,
			Image: image,
			Qty:   1,
		})
	})

	m.notifier.Notify(fmt.Sprintf("%s added to your bag", p.Name), notify.Success, 3*time.Second)
}

// Remove deletes the matching item. Removing an item that is already
// gone is a no-op, not an error.
func (m *Manager) Remove(ctx context.Context, id, size string) {
	m.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		for i := range items {
			if items[i].ID == id && items[i].Size == size {
				return append(items[:i], items[i+1:]...)
			}
		}
		return items
	})
}

// UpdateQty sets the quantity of the matching item, clamped to MaxQty.
// A quantity below MinQty removes the item instead; quantities never
// reach zero while an item is present.
func (m *Manager) UpdateQty(ctx context.Context, id, size string, qty int) {
	if qty < domain.MinQty {
		m.Remove(ctx, id, size)
		return
	}
	if qty > domain.MaxQty {
		qty = domain.MaxQty
	}
	m.mutate(ctx, func(items []domain.LineItem) []domain.LineItem {
		for i := range items {
			if items[i].ID == id && items[i].Size == size {
				items[i].Qty = qty
				break
			}
		}
		return items
	})
}

// Clear empties the bag by deleting the stored record.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	if err := m.kv.Delete(ctx, Key); err != nil {
		m.log.Error("cart clear failed", "error", err)
	}
	m.mu.Unlock()
	m.broadcast([]domain.LineItem{})
}

// mutate runs one read-modify-write cycle under the manager lock, then
// broadcasts the result.
func (m *Manager) mutate(ctx context.Context, fn func([]domain.LineItem) []domain.LineItem) {
	m.mu.Lock()
	items := fn(m.load(ctx))
	if err := m.save(ctx, items); err != nil {
		m.log.Error("cart write failed", "error", err)
	}
	m.mu.Unlock()
	m.broadcast(items)
}

func (m *Manager) save(ctx context.Context, items []domain.LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := m.kv.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("persist cart failed: %w", err)
	}
	return nil
}

func (m *Manager) broadcast(items []domain.LineItem) {
	m.subMu.Lock()
	listeners := make([]Listener, 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.subMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot(items))
	}
}

func snapshot(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}

// Total sums price × qty over the given snapshot. Pure; callers pass
// the snapshot they are rendering so promo math and display totals
// come from a single read.
func Total(items []domain.LineItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Price * float64(item.Qty)
	}
	return sum
}

// Count sums quantities over the given snapshot.
func Count(items []domain.LineItem) int {
	var n int
	for _, item := range items {
		n += item.Qty
	}
	return n
}
