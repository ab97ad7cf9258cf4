// internal/domain/cart/client.go
package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/your-org/ecommerce-storefront/internal/api"
)

// Client manages the user's server-side cart. All operations require a
// session; without one they return session.ErrUnauthenticated before
// any network call so the caller can redirect to sign-in.
type Client struct {
	api *api.Client
}

// NewClient creates a cart client
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

type cartEnvelope struct {
	Cart Cart `json:"cart"`
}

type addRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

// Fetch retrieves the current cart
func (c *Client) Fetch(ctx context.Context) (*Cart, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}

	var envelope cartEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/cart", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return &envelope.Cart, nil
}

// Add puts a product in the cart. The cart is created implicitly on
// the first add.
func (c *Client) Add(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, api.NewValidationError("quantity", "must be at least 1")
	}

	var envelope cartEnvelope
	if err := c.api.Do(ctx, http.MethodPost, "/cart/items", &addRequest{ProductID: productID, Quantity: quantity}, &envelope); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	return &envelope.Cart, nil
}

// SetQuantity updates one line's quantity. A quantity below 1 is a
// local no-op: no call is made and no error is returned, the caller
// keeps its current cart.
func (c *Client) SetQuantity(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, nil
	}

	var envelope cartEnvelope
	if err := c.api.Do(ctx, http.MethodPut, "/cart/items/"+productID, &updateRequest{Quantity: quantity}, &envelope); err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return &envelope.Cart, nil
}

// Remove deletes one line from the cart
func (c *Client) Remove(ctx context.Context, productID string) (*Cart, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}

	var envelope cartEnvelope
	if err := c.api.Do(ctx, http.MethodDelete, "/cart/items/"+productID, nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}
	return &envelope.Cart, nil
}

// Clear removes every line from the cart
func (c *Client) Clear(ctx context.Context) (*Cart, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}

	var envelope cartEnvelope
	if err := c.api.Do(ctx, http.MethodDelete, "/cart", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	return &envelope.Cart, nil
}
