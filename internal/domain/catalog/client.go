// internal/domain/catalog/client.go
package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/your-org/ecommerce-storefront/internal/api"
)

// Client reads products from the catalog service
type Client struct {
	api *api.Client
}

// NewClient creates a catalog client
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

type productEnvelope struct {
	Product Product `json:"product"`
}

type productListEnvelope struct {
	Products []Product `json:"products"`
}

// Get retrieves a single product by id
func (c *Client) Get(ctx context.Context, productID string) (*Product, error) {
	var envelope productEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/products/"+productID, nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &envelope.Product, nil
}

// List retrieves all products
func (c *Client) List(ctx context.Context) ([]Product, error) {
	var envelope productListEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/products", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return envelope.Products, nil
}

// ListByCategory retrieves products belonging to a category
func (c *Client) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	var envelope productListEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/categories/"+category+"/products", nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list category products: %w", err)
	}
	return envelope.Products, nil
}
