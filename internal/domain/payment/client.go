// internal/domain/payment/client.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/api"
	"github.com/your-org/ecommerce-storefront/internal/config"
)

// Authorization is a short-lived payment handle for one checkout
// attempt. It authorizes confirmation of exactly this amount and is
// discarded once confirmation succeeds or fails.
type Authorization struct {
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
}

// CardDetails carries card data entered by the user. It is sent only
// to the processor, never through the commerce API.
type CardDetails struct {
	Number   string `json:"number"`
	ExpMonth string `json:"exp_month"`
	ExpYear  string `json:"exp_year"`
	CVC      string `json:"cvc"`
}

// ConfirmStatus is the processor's terminal confirmation outcome
type ConfirmStatus string

const (
	ConfirmSucceeded ConfirmStatus = "succeeded"
	ConfirmDeclined  ConfirmStatus = "declined"
	ConfirmError     ConfirmStatus = "error"
)

// Result is the outcome of a confirmation attempt. Declined and error
// are treated identically for flow purposes; only the message differs.
type Result struct {
	Status  ConfirmStatus `json:"status"`
	Message string        `json:"message,omitempty"`
}

// Proceed reports whether the flow may continue to order placement
func (r *Result) Proceed() bool {
	return r.Status == ConfirmSucceeded
}

// Client obtains payment authorizations from the commerce API and
// confirms charges directly with the card processor.
type Client struct {
	api           *api.Client
	processorURL  string
	processorHTTP *http.Client
	logger        *logrus.Logger
}

// NewClient creates a payment client
func NewClient(cfg *config.Config, apiClient *api.Client, logger *logrus.Logger) *Client {
	return &Client{
		api:          apiClient,
		processorURL: strings.TrimRight(cfg.Processor.BaseURL, "/"),
		processorHTTP: &http.Client{
			Timeout: cfg.Processor.Timeout,
		},
		logger: logger,
	}
}

type createIntentRequest struct {
	Amount int64 `json:"amount"`
}

// CreateIntent requests a payment authorization for the given amount,
// in the processor's minor-unit convention.
func (c *Client) CreateIntent(ctx context.Context, amount int64) (*Authorization, error) {
	if amount <= 0 {
		return nil, api.NewValidationError("amount", "must be positive")
	}

	var auth Authorization
	if err := c.api.Do(ctx, http.MethodPost, "/payment/create-payment-intent", &createIntentRequest{Amount: amount}, &auth); err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if auth.ClientSecret == "" {
		return nil, fmt.Errorf("payment intent response missing client secret")
	}
	return &auth, nil
}

type confirmRequest struct {
	ClientSecret string      `json:"client_secret"`
	Card         CardDetails `json:"card"`
}

// Confirm submits card details straight to the processor and waits for
// a terminal outcome. Card data never transits the commerce API.
func (c *Client) Confirm(ctx context.Context, auth *Authorization, card CardDetails) (*Result, error) {
	if auth == nil || auth.ClientSecret == "" {
		return nil, fmt.Errorf("payment authorization is required")
	}
	if strings.TrimSpace(card.Number) == "" {
		return nil, api.NewValidationError("card_number", "is required")
	}

	reqBody, err := json.Marshal(&confirmRequest{ClientSecret: auth.ClientSecret, Card: card})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal confirmation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.processorURL+"/intents/confirm", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.processorHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment processor: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read processor response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("processor call failed with status %d: %s", resp.StatusCode, respBody.String())
	}

	var result Result
	if err := json.Unmarshal(respBody.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse processor response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status": result.Status,
		"amount": auth.Amount,
	}).Info("payment confirmation completed")

	return &result, nil
}
