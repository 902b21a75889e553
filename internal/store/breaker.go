package store

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker decorates a KV with a circuit breaker so a misbehaving
// backend degrades to "key not found" instead of stalling every page.
// The cart layer already treats ErrNotFound as an empty cart.
type Breaker struct {
	next KV
	cb   *gobreaker.CircuitBreaker[[]byte]
}

// NewBreaker wraps next. The circuit opens after 5 consecutive
// failures and probes again after 30 seconds.
func NewBreaker(name string, next KV) *Breaker {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A missing key is a valid answer, not a backend fault.
			return err == nil || errors.Is(err, ErrNotFound)
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[[]byte](settings)}
}

func (b *Breaker) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := b.cb.Execute(func() ([]byte, error) {
		return b.next.Get(ctx, key)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrNotFound
	}
	return value, err
}

func (b *Breaker) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return err
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}
