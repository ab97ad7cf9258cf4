// internal/domain/cart/entity.go
package cart

import (
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
)

// Line is one product-quantity pairing within the cart
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// LineTotal returns quantity times unit price in minor units
func (l *Line) LineTotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Cart is the server-held cart mirrored client-side for display. The
// server is authoritative: every mutation replaces this wholesale with
// the server's post-mutation cart, never a local patch.
type Cart struct {
	Items      []Line `json:"items"`
	TotalPrice int64  `json:"total_price"`
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
