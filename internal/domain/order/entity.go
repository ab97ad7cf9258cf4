// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/your-org/ecommerce-storefront/internal/domain/address"
)

// Status represents the order status. Assigned and mutated only by the
// server; the client never sends it on creation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the status is one of the known order statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Valid reports whether the status is one of the known payment statuses
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// PaymentMethod is the fixed enumeration of accepted payment methods
type PaymentMethod string

const (
	MethodCOD        PaymentMethod = "COD"
	MethodCreditCard PaymentMethod = "Credit Card"
	MethodDebitCard  PaymentMethod = "Debit Card"
	MethodUPI        PaymentMethod = "UPI"
)

// Valid reports whether the method is one of the four accepted values
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCOD, MethodCreditCard, MethodDebitCard, MethodUPI:
		return true
	}
	return false
}

// RequiresConfirmation reports whether the method needs a processor
// confirmation step before the order may be placed. Only cash on
// delivery skips it.
func (m PaymentMethod) RequiresConfirmation() bool {
	return m != MethodCOD
}

// Item is an order line captured from the cart at order time. Title,
// price and image are frozen snapshots: later catalog changes do not
// retroactively alter historical orders.
type Item struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
}

// Order is an immutable record of a completed checkout. Only the two
// status fields change after creation, and only server-side.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []Item          `json:"order_items"`
	ShippingAddress address.Address `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Status          Status          `json:"order_status"`
	Subtotal        int64           `json:"subtotal"`
	TotalAmount     int64           `json:"total_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
}

// CreateRequest is the order submission payload. It carries no order
// status: that is always server-assigned.
type CreateRequest struct {
	Items             []Item        `json:"order_items"`
	ShippingAddressID string        `json:"shipping_address_id"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	Subtotal          int64         `json:"subtotal"`
	TotalAmount       int64         `json:"total_amount"`
}

// StatusUpdate is the back-office mutation payload; either field may
// be omitted to leave it unchanged.
type StatusUpdate struct {
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
	OrderStatus   *Status        `json:"order_status,omitempty"`
}
