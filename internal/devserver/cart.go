// internal/devserver/cart.go
package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// getCart handles GET /cart
func (s *Server) getCart(c *gin.Context) {
	userID := currentUserID(c)

	s.store.mu.Lock()
	built := s.store.buildCart(userID)
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"cart": built})
}

// addCartItem handles POST /cart/items. The cart comes into existence
// on the first add.
func (s *Server) addCartItem(c *gin.Context) {
	userID := currentUserID(c)

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.products[req.ProductID]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	lines := s.store.carts[userID]
	merged := false
	for i := range lines {
		if lines[i].ProductID == req.ProductID {
			lines[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, cartLine{ProductID: req.ProductID, Quantity: req.Quantity})
	}
	s.store.carts[userID] = lines

	c.JSON(http.StatusOK, gin.H{"cart": s.store.buildCart(userID)})
}

// updateCartItem handles PUT /cart/items/:id
func (s *Server) updateCartItem(c *gin.Context) {
	userID := currentUserID(c)
	productID := c.Param("id")

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	lines := s.store.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = req.Quantity
			s.store.carts[userID] = lines
			c.JSON(http.StatusOK, gin.H{"cart": s.store.buildCart(userID)})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
}

// removeCartItem handles DELETE /cart/items/:id
func (s *Server) removeCartItem(c *gin.Context) {
	userID := currentUserID(c)
	productID := c.Param("id")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	lines := s.store.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.store.carts[userID] = append(lines[:i], lines[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"cart": s.store.buildCart(userID)})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
}

// clearCart handles DELETE /cart
func (s *Server) clearCart(c *gin.Context) {
	userID := currentUserID(c)

	s.store.mu.Lock()
	delete(s.store.carts, userID)
	built := s.store.buildCart(userID)
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"cart": built})
}
