package domain

const (
	// MinQty and MaxQty bound the quantity of a single line item.
	MinQty = 1
	MaxQty = 10

	// DefaultSize is used when a product has no size selector.
	DefaultSize = "One Size"

	// PlaceholderImage is shown for products without a photo.
	PlaceholderImage = "img/placeholder.jpg"
)

// Product is what a catalog page hands to the cart when the shopper
// clicks "add to bag". Size and Image are optional.
type Product struct {
	ID    string
	Name  string
	Price float64
	Image string
	Size  string
}

// LineItem is one product+size entry in the cart. Items are unique by
// the composite key (ID, Size).
type LineItem struct {
	ID    string  `json:"id"`
	Size  string  `json:"size"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
	Qty   int     `json:"qty"`
}

// Key returns the composite identity of the item within a cart.
func (li LineItem) Key() (id, size string) {
	return li.ID, li.Size
}

// User is the stored session record. Its existence is the sole
// "logged in" signal; no credentials are kept.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
