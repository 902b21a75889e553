// Package views holds the three cart renderers: the slide-out drawer,
// the full cart page, and the checkout sidebar. Each subscribes to the
// cart manager, renders immediately on mount, and re-renders from the
// snapshot each change notification carries. Totals are always derived
// from the snapshot being rendered, never cached across renders.
package views

import (
	"context"
	"html/template"
	"io"
	"sync"
	"time"

	"github.com/velvetvogue/storefront/internal/cart"
	"github.com/velvetvogue/storefront/internal/domain"
	"github.com/velvetvogue/storefront/internal/notify"
	"github.com/velvetvogue/storefront/internal/pricing"
)

// viewModel is what every template renders: one snapshot plus the
// amounts derived from it.
type viewModel struct {
	Items []domain.LineItem
	Count int
	Quote pricing.Quote
}

func buildModel(items []domain.LineItem, promoApplied bool) viewModel {
	return viewModel{
		Items: items,
		Count: cart.Count(items),
		Quote: pricing.NewQuote(items, promoApplied),
	}
}

var funcs = template.FuncMap{
	"money": pricing.Format,
}

// Drawer is the slide-out mini cart. While closed it skips re-renders;
// opening it renders from a fresh read.
type Drawer struct {
	bag *cart.Manager

	mu      sync.Mutex
	open    bool
	items   []domain.LineItem
	renders int

	unsubscribe func()
}

func NewDrawer(ctx context.Context, bag *cart.Manager) *Drawer {
	d := &Drawer{bag: bag}
	d.unsubscribe = bag.Subscribe(func(items []domain.LineItem) {
		d.mu.Lock()
		d.items = items
		if d.open {
			d.renders++
		}
		d.mu.Unlock()
	})
	d.items = bag.Get(ctx)
	return d
}

// Open shows the drawer and renders it from a fresh snapshot.
func (d *Drawer) Open(ctx context.Context) {
	items := d.bag.Get(ctx)
	d.mu.Lock()
	d.open = true
	d.items = items
	d.renders++
	d.mu.Unlock()
}

func (d *Drawer) Close() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

func (d *Drawer) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Badge returns the cart-count badge value.
func (d *Drawer) Badge() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cart.Count(d.items)
}

func (d *Drawer) Render(w io.Writer) error {
	d.mu.Lock()
	model := buildModel(d.items, false)
	d.mu.Unlock()
	return drawerTmpl.Execute(w, model)
}

// Unmount detaches the drawer from change notifications.
func (d *Drawer) Unmount() {
	d.unsubscribe()
}

// Page is the full cart page: quantity controls, item removal, and
// the promo code entry.
type Page struct {
	bag      *cart.Manager
	notifier notify.Notifier

	mu           sync.Mutex
	items        []domain.LineItem
	promoApplied bool
	renders      int

	unsubscribe func()
}

func NewPage(ctx context.Context, bag *cart.Manager, notifier notify.Notifier) *Page {
	p := &Page{bag: bag, notifier: notifier}
	p.unsubscribe = bag.Subscribe(func(items []domain.LineItem) {
		p.mu.Lock()
		p.items = items
		p.renders++
		p.mu.Unlock()
	})
	p.items = bag.Get(ctx)
	return p
}

// Increment bumps the item's quantity by one. The manager enforces
// the cap, so the view carries no clamp logic of its own.
func (p *Page) Increment(ctx context.Context, id, size string) {
	if item, ok := p.find(id, size); ok {
		p.bag.UpdateQty(ctx, id, size, item.Qty+1)
	}
}

// Decrement drops the quantity by one; at one unit the manager
// removes the item.
func (p *Page) Decrement(ctx context.Context, id, size string) {
	if item, ok := p.find(id, size); ok {
		p.bag.UpdateQty(ctx, id, size, item.Qty-1)
	}
}

func (p *Page) Remove(ctx context.Context, id, size string) {
	p.bag.Remove(ctx, id, size)
}

func (p *Page) find(id, size string) (domain.LineItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range p.items {
		if item.ID == id && item.Size == size {
			return item, true
		}
	}
	return domain.LineItem{}, false
}

// ApplyPromo checks the entered code and, when accepted, recomputes
// the discount against a fresh snapshot. Shipping is unaffected.
func (p *Page) ApplyPromo(ctx context.Context, code string) error {
	if err := pricing.CheckPromo(code); err != nil {
		p.notifier.Notify("That promo code is not valid", notify.Error, 3*time.Second)
		return err
	}
	items := p.bag.Get(ctx)
	p.mu.Lock()
	p.promoApplied = true
	p.items = items
	p.mu.Unlock()
	p.notifier.Notify("Promo applied: 15% off your subtotal", notify.Success, 3*time.Second)
	return nil
}

// PromoApplied reports whether the discount is active.
func (p *Page) PromoApplied() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.promoApplied
}

func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	model := buildModel(p.items, p.promoApplied)
	p.mu.Unlock()
	return pageTmpl.Execute(w, model)
}

func (p *Page) Unmount() {
	p.unsubscribe()
}

// Sidebar is the order summary beside the checkout steps. It always
// re-renders on change.
type Sidebar struct {
	bag *cart.Manager

	mu      sync.Mutex
	items   []domain.LineItem
	renders int

	unsubscribe func()
}

func NewSidebar(ctx context.Context, bag *cart.Manager) *Sidebar {
	s := &Sidebar{bag: bag}
	s.unsubscribe = bag.Subscribe(func(items []domain.LineItem) {
		s.mu.Lock()
		s.items = items
		s.renders++
		s.mu.Unlock()
	})
	s.items = bag.Get(ctx)
	return s
}

func (s *Sidebar) Render(w io.Writer) error {
	s.mu.Lock()
	model := buildModel(s.items, false)
	s.mu.Unlock()
	return sidebarTmpl.Execute(w, model)
}

func (s *Sidebar) Unmount() {
	s.unsubscribe()
}
