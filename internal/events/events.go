// Package events publishes order lifecycle events for downstream
// consumers (fulfilment, analytics). Publishing is best effort; a
// failed publish never fails the order.
package events

import (
	"context"
	"time"

	"github.com/velvetvogue/storefront/internal/domain"
)

// OrderPlaced is emitted once per successful order placement.
type OrderPlaced struct {
	Ref      string            `json:"ref"`      // internal unique reference
	OrderID  string            `json:"order_id"` // shopper-facing VV-XXXXXX id
	Items    []domain.LineItem `json:"items"`
	Total    float64           `json:"total"`
	PlacedAt time.Time         `json:"placed_at"`
}

// Publisher delivers order events somewhere. Implementations must be
// safe for concurrent use.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}

// Nop is the default publisher when no broker is configured.
type Nop struct{}

func (Nop) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
