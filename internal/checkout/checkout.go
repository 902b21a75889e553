// Package checkout drives the four-step order flow: Shipping, Payment,
// Review, Confirmation. Step state lives only in the controller; a new
// controller (a fresh page load) always starts at Shipping with
// whatever the persisted cart holds.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/velvetvogue/storefront/internal/cart"
	"github.com/velvetvogue/storefront/internal/events"
	"github.com/velvetvogue/storefront/internal/forms"
	"github.com/velvetvogue/storefront/internal/notify"
)

type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepReview
	StepConfirmation
)

// ProcessingDelay simulates the payment gateway round trip.
const ProcessingDelay = 1500 * time.Millisecond

var (
	ErrEmptyCart     = errors.New("checkout: cart is empty")
	ErrInFlight      = errors.New("checkout: order submission already in progress")
	ErrInvalidFields = errors.New("checkout: required fields are blank")
	ErrBadCard       = errors.New("checkout: please enter a valid card number")
	ErrBadExpiry     = errors.New("checkout: expiry must be MM/YY")
	ErrBadCVV        = errors.New("checkout: please enter a valid CVV")
	expiryPattern    = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

func randInt(n int) int {
	return rand.Intn(n)
}

// Card is the card sub-panel's contents, only consulted when the
// selected payment method is "card".
type Card struct {
	Number string
	Expiry string
	CVV    string
}

// Controller is the step machine. One controller serves one checkout
// visit.
type Controller struct {
	bag       *cart.Manager
	notifier  notify.Notifier
	publisher events.Publisher
	log       *slog.Logger

	// Swapped in tests to skip the simulated latency and fix the
	// order number.
	sleep   func(time.Duration)
	randInt func(n int) int

	mu      sync.Mutex
	step    Step
	method  string
	orderID string
	placing bool
}

func NewController(bag *cart.Manager, notifier notify.Notifier, publisher events.Publisher, log *slog.Logger) *Controller {
	return &Controller{
		bag:       bag,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
		sleep:     time.Sleep,
		randInt:   randInt,
		step:      StepShipping,
		method:    "card",
	}
}

// Step reports the currently displayed step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// GoToStep jumps the display unconditionally; the shipping gate only
// applies to SubmitShipping. Out-of-range steps clamp to the flow.
func (c *Controller) GoToStep(n Step) {
	if n < StepShipping {
		n = StepShipping
	}
	if n > StepConfirmation {
		n = StepConfirmation
	}
	c.mu.Lock()
	c.step = n
	c.mu.Unlock()
}

// ShippingFields are the step-1 required fields.
func ShippingFields() map[string]string {
	return map[string]string{
		"firstName": "First name",
		"lastName":  "Last name",
		"email":     "Email",
		"address":   "Address",
		"city":      "City",
		"zip":       "Postal code",
		"country":   "Country",
	}
}

// SubmitShipping is the guarded advance from Shipping to Payment.
// Every required field must be non-blank; otherwise the transition is
// refused, the offending fields are returned for inline flagging, and
// an error toast is raised. No partial transition occurs.
func (c *Controller) SubmitShipping(values map[string]string) (map[string]string, error) {
	invalid := forms.Validate(forms.RequiredOnly(ShippingFields()), values)
	if len(invalid) > 0 {
		c.notifier.Notify("Please fill in all required fields", notify.Error, 3*time.Second)
		return invalid, ErrInvalidFields
	}
	c.mu.Lock()
	c.step = StepPayment
	c.mu.Unlock()
	return nil, nil
}

// SelectPayment picks exactly one payment method; selecting one
// deselects whatever was chosen before.
func (c *Controller) SelectPayment(method string) {
	c.mu.Lock()
	c.method = method
	c.mu.Unlock()
}

// PaymentMethod reports the single selected method.
func (c *Controller) PaymentMethod() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.method
}

// CardFormVisible reports whether the card-details sub-panel shows.
func (c *Controller) CardFormVisible() bool {
	return c.PaymentMethod() == "card"
}

// OrderID returns the shopper-facing order identifier once the
// confirmation step is reached.
func (c *Controller) OrderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderID
}

// PlaceOrder is the terminal action. It refuses on an empty cart and,
// for card payments, validates the card fields in order, stopping at
// the first failure. On success it simulates the gateway delay,
// assigns a VV-XXXXXX order number, clears the cart, and lands on the
// confirmation step. A second submission while one is in flight is
// rejected.
func (c *Controller) PlaceOrder(ctx context.Context, card Card) (string, error) {
	items := c.bag.Get(ctx)
	if len(items) == 0 {
		c.notifier.Notify("Your bag is empty", notify.Error, 3*time.Second)
		return "", ErrEmptyCart
	}

	c.mu.Lock()
	if c.placing {
		c.mu.Unlock()
		return "", ErrInFlight
	}
	method := c.method
	c.placing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.placing = false
		c.mu.Unlock()
	}()

	if method == "card" {
		if err := validateCard(card); err != nil {
			c.notifier.Notify(strings.TrimPrefix(err.Error(), "checkout: "), notify.Error, 3*time.Second)
			return "", err
		}
	}

	c.sleep(ProcessingDelay)

	orderID := fmt.Sprintf("VV-%06d", c.randInt(900000)+100000)
	total := cart.Total(items)
	c.bag.Clear(ctx)

	if err := c.publisher.PublishOrderPlaced(ctx, events.OrderPlaced{
		Ref:      uuid.NewString(),
		OrderID:  orderID,
		Items:    items,
		Total:    total,
		PlacedAt: time.Now(),
	}); err != nil {
		c.log.Error("order event publish failed", "order_id", orderID, "error", err)
	}

	c.mu.Lock()
	c.orderID = orderID
	c.step = StepConfirmation
	c.mu.Unlock()

	c.notifier.Notify("Order placed successfully", notify.Success, 3*time.Second)
	return orderID, nil
}

// validateCard checks the card fields in panel order, short-circuiting
// on the first failure.
func validateCard(card Card) error {
	if len(digitsOf(card.Number)) < 16 {
		return ErrBadCard
	}
	if !expiryPattern.MatchString(strings.TrimSpace(card.Expiry)) {
		return ErrBadExpiry
	}
	if len(digitsOf(card.CVV)) < 3 {
		return ErrBadCVV
	}
	return nil
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
