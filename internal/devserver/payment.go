// internal/devserver/payment.go
package devserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/ecommerce-storefront/internal/domain/payment"
)

// Test card numbers, mirroring the usual processor sandbox
const (
	cardAlwaysSucceeds = "4242424242424242"
	cardAlwaysDeclines = "4000000000000002"
)

type createIntentRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// createPaymentIntent handles POST /payment/create-payment-intent on
// the commerce API side.
func (s *Server) createPaymentIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	secret := fmt.Sprintf("pi_%s_secret_%s", uuid.NewString(), uuid.NewString())

	s.store.mu.Lock()
	s.store.intents[secret] = &intent{ClientSecret: secret, Amount: req.Amount}
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"client_secret": secret, "amount": req.Amount})
}

type confirmIntentRequest struct {
	ClientSecret string              `json:"client_secret" binding:"required"`
	Card         payment.CardDetails `json:"card"`
}

// confirmIntent handles POST /v1/intents/confirm on the processor
// side. Outcomes are driven by the card number; the handle is single
// use.
func (s *Server) confirmIntent(c *gin.Context) {
	var req confirmIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": payment.ConfirmError, "message": "Invalid confirmation request"})
		return
	}

	s.store.mu.Lock()
	in, ok := s.store.intents[req.ClientSecret]
	if ok && in.Confirmed {
		ok = false
	}
	if ok {
		in.Confirmed = true
	}
	s.store.mu.Unlock()

	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": payment.ConfirmError, "message": "No such payment intent"})
		return
	}

	number := strings.ReplaceAll(req.Card.Number, " ", "")
	switch {
	case number == cardAlwaysDeclines:
		c.JSON(http.StatusOK, gin.H{"status": payment.ConfirmDeclined, "message": "Your card was declined."})
	case number == cardAlwaysSucceeds:
		c.JSON(http.StatusOK, gin.H{"status": payment.ConfirmSucceeded})
	case len(number) < 12:
		c.JSON(http.StatusOK, gin.H{"status": payment.ConfirmError, "message": "Your card number is invalid."})
	default:
		c.JSON(http.StatusOK, gin.H{"status": payment.ConfirmSucceeded})
	}
}
