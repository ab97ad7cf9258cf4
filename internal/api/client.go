// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/session"
)

// Client executes authenticated calls against the commerce API. Every
// service client goes through Do so auth, status mapping and logging
// live in exactly one place.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *session.Store
	logger     *logrus.Logger
}

// NewClient creates a commerce API client
func NewClient(cfg *config.Config, sessions *session.Store, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.API.Timeout,
		},
		sessions: sessions,
		logger:   logger,
	}
}

// Session returns the active session or session.ErrUnauthenticated.
// Callers that require auth check this before issuing the call.
func (c *Client) Session() (*session.Session, error) {
	return c.sessions.Current()
}

// errorEnvelope is the canonical error shape of the commerce API
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Do executes one API call and decodes the response into out (when out
// is non-nil). A 401 destroys the stored credential and surfaces as
// session.ErrUnauthenticated; 404 maps to ErrNotFound.
func (c *Client) Do(ctx context.Context, method, endpoint string, data, out interface{}) error {
	var reqBody []byte
	var err error

	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if sess, err := c.sessions.Current(); err == nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"method":      method,
		"path":        endpoint,
		"status_code": resp.StatusCode,
		"latency":     time.Since(start),
	}).Debug("commerce API call completed")

	if resp.StatusCode == http.StatusUnauthorized {
		// Expired or revoked credential; destroy it so the caller can
		// redirect to sign-in.
		if err := c.sessions.Clear(); err != nil {
			c.logger.WithError(err).Warn("failed to clear stored credential")
		}
		return session.ErrUnauthenticated
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		_ = json.Unmarshal(respBody, &envelope)
		message := envelope.Error
		if message == "" {
			message = envelope.Message
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
