// Package pricing computes the derived display amounts every cart view
// shows: subtotal, promo discount, shipping, and grand total. All
// functions are pure over a snapshot so a render never mixes two reads.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/velvetvogue/storefront/internal/cart"
	"github.com/velvetvogue/storefront/internal/domain"
)

const (
	// FreeShippingThreshold waives the shipping fee once the
	// subtotal (before any promo discount) reaches it.
	FreeShippingThreshold = 60.0

	// FlatShippingFee applies below the threshold.
	FlatShippingFee = 4.99

	// PromoCode is the single accepted promotion, compared
	// case-insensitively.
	PromoCode = "VOGUE15"

	// PromoRate is the discount applied to the subtotal only;
	// shipping is unaffected.
	PromoRate = 0.15

	// CurrencySymbol prefixes every rendered amount.
	CurrencySymbol = "$"
)

// ErrUnknownPromo rejects any code other than PromoCode.
var ErrUnknownPromo = errors.New("pricing: unknown promo code")

// Quote is one view's worth of totals, computed from a single snapshot.
type Quote struct {
	Subtotal float64
	Discount float64
	Shipping float64
	Total    float64
}

// NewQuote derives the amounts for the given snapshot. promoApplied
// reflects whether the shopper has entered the promo code on the cart
// page; shipping is decided on the pre-discount subtotal.
func NewQuote(items []domain.LineItem, promoApplied bool) Quote {
	subtotal := cart.Total(items)

	var discount float64
	if promoApplied {
		discount = subtotal * PromoRate
	}

	var shipping float64
	if subtotal > 0 && subtotal < FreeShippingThreshold {
		shipping = FlatShippingFee
	}

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    subtotal - discount + shipping,
	}
}

// CheckPromo validates a code the shopper typed. The discount itself
// is recomputed from a fresh snapshot by the caller via NewQuote.
func CheckPromo(code string) error {
	if strings.ToUpper(strings.TrimSpace(code)) != PromoCode {
		return ErrUnknownPromo
	}
	return nil
}

// Format renders an amount with the fixed currency symbol and exactly
// two decimal places.
func Format(amount float64) string {
	return fmt.Sprintf("%s%.2f", CurrencySymbol, amount)
}
