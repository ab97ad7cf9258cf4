// internal/domain/address/client.go
package address

import (
	"context"
	"fmt"
	"net/http"

	"github.com/your-org/ecommerce-storefront/internal/api"
)

// Client manages the user's saved shipping addresses. Every operation
// requires a session and fails with session.ErrUnauthenticated before
// issuing a call when none exists.
type Client struct {
	api *api.Client
}

// NewClient creates an address book client
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

type addressEnvelope struct {
	Address Address `json:"address"`
}

type addressListEnvelope struct {
	Addresses []Address `json:"addresses"`
}

// List retrieves all saved addresses, default first
func (c *Client) List(ctx context.Context) ([]Address, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}

	var envelope addressListEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/addresses", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return envelope.Addresses, nil
}

// Create saves a new address and returns it with its server-assigned id
func (c *Client) Create(ctx context.Context, form Form) (*Address, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	var envelope addressEnvelope
	if err := c.api.Do(ctx, http.MethodPost, "/addresses", &form, &envelope); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &envelope.Address, nil
}

// Update rewrites an existing address in place
func (c *Client) Update(ctx context.Context, addressID string, form Form) (*Address, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	var envelope addressEnvelope
	if err := c.api.Do(ctx, http.MethodPut, "/addresses/"+addressID, &form, &envelope); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return &envelope.Address, nil
}

// Delete removes an address from the address book
func (c *Client) Delete(ctx context.Context, addressID string) error {
	if _, err := c.api.Session(); err != nil {
		return err
	}

	if err := c.api.Do(ctx, http.MethodDelete, "/addresses/"+addressID, nil, nil); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

// SetDefault promotes an address to default and returns the refetched
// list. The server, not the client, recomputes which single address is
// default, so the list must come back from the server afterwards.
func (c *Client) SetDefault(ctx context.Context, addressID string) ([]Address, error) {
	if _, err := c.api.Session(); err != nil {
		return nil, err
	}

	if err := c.api.Do(ctx, http.MethodPut, "/addresses/"+addressID+"/default", nil, nil); err != nil {
		return nil, fmt.Errorf("failed to set default address: %w", err)
	}

	return c.List(ctx)
}
