// internal/domain/order/client.go
package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/your-org/ecommerce-storefront/internal/api"
	"github.com/your-org/ecommerce-storefront/internal/session"
)

// Client places orders and reads order history. Buyer operations need
// any session; the back-office operations need the admin role and are
// rejected client-side before the call without it.
type Client struct {
	api *api.Client
}

// NewClient creates an order client
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

type orderEnvelope struct {
	Order Order `json:"order"`
}

type orderListEnvelope struct {
	Orders []Order `json:"orders"`
}

// Create submits a new order and returns it with its server-assigned
// id and pending statuses. The item list must be non-empty and the
// payment method one of the accepted values; both are rejected here
// before anything is sent.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, api.NewValidationError("order_items", "order must contain at least one item")
	}
	if !req.PaymentMethod.Valid() {
		return nil, api.NewValidationError("payment_method", fmt.Sprintf("invalid payment method %q", req.PaymentMethod))
	}
	if req.ShippingAddressID == "" {
		return nil, api.NewValidationError("shipping_address_id", "shipping address is required")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, api.NewValidationError("order_items", "item quantity must be at least 1")
		}
	}

	var envelope orderEnvelope
	if err := c.api.Do(ctx, http.MethodPost, "/orders", &req, &envelope); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	return &envelope.Order, nil
}

// ListMine retrieves the current user's order history
func (c *Client) ListMine(ctx context.Context) ([]Order, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}

	var envelope orderListEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/orders", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return envelope.Orders, nil
}

// GetByID retrieves one order. A non-existent or foreign-owned order
// yields api.ErrNotFound, distinguishable from transport failure.
func (c *Client) GetByID(ctx context.Context, orderID string) (*Order, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}

	var envelope orderEnvelope
	err := c.api.Do(ctx, http.MethodGet, "/orders/"+orderID, nil, &envelope)
	if errors.Is(err, api.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &envelope.Order, nil
}

// ListAll retrieves every order in the store. Back-office only.
func (c *Client) ListAll(ctx context.Context) ([]Order, error) {
	sess, err := c.api.Session()
	if err != nil {
		return nil, err
	}
	if err := sess.Require(session.RoleAdmin); err != nil {
		return nil, err
	}

	var envelope orderListEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/admin/orders", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return envelope.Orders, nil
}

// UpdateStatus mutates an order's payment and/or order status.
// Back-office only; values outside the fixed enumerations are rejected
// before the call.
func (c *Client) UpdateStatus(ctx context.Context, orderID string, update StatusUpdate) (*Order, error) {
	sess, err := c.api.Session()
	if err != nil {
		return nil, err
	}
	if err := sess.Require(session.RoleAdmin); err != nil {
		return nil, err
	}
	if update.PaymentStatus == nil && update.OrderStatus == nil {
		return nil, api.NewValidationError("status", "nothing to update")
	}
	if update.PaymentStatus != nil && !update.PaymentStatus.Valid() {
		return nil, api.NewValidationError("payment_status", fmt.Sprintf("invalid payment status %q", *update.PaymentStatus))
	}
	if update.OrderStatus != nil && !update.OrderStatus.Valid() {
		return nil, api.NewValidationError("order_status", fmt.Sprintf("invalid order status %q", *update.OrderStatus))
	}

	var envelope orderEnvelope
	if err := c.api.Do(ctx, http.MethodPut, "/admin/orders/"+orderID+"/status", &update, &envelope); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &envelope.Order, nil
}

// Delete irreversibly removes an order. Back-office only.
func (c *Client) Delete(ctx context.Context, orderID string) error {
	sess, err := c.api.Session()
	if err != nil {
		return err
	}
	if err := sess.Require(session.RoleAdmin); err != nil {
		return err
	}

	if err := c.api.Do(ctx, http.MethodDelete, "/admin/orders/"+orderID, nil, nil); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}
