// internal/devserver/order.go
package devserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
	"github.com/your-org/ecommerce-storefront/internal/session"
)

// createOrder handles POST /orders. Items, title, price and image are
// stored as submitted and never touched again: the order is a snapshot,
// not a view over the live catalog. Statuses are server-assigned.
func (s *Server) createOrder(c *gin.Context) {
	userID := currentUserID(c)

	var req order.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one item"})
		return
	}
	if !req.PaymentMethod.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
		return
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Item quantity must be at least 1"})
			return
		}
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	_, shipping := s.store.addressByID(userID, req.ShippingAddressID)
	if shipping == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address not found"})
		return
	}

	items := make([]order.Item, len(req.Items))
	copy(items, req.Items)

	created := &order.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: *shipping, // embedded snapshot, not a live reference
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   order.PaymentStatusPending,
		Status:          order.StatusPending,
		Subtotal:        req.Subtotal,
		TotalAmount:     req.TotalAmount,
		CreatedAt:       time.Now().UTC(),
	}
	s.store.addOrder(created)

	c.JSON(http.StatusCreated, gin.H{"order": *created})
}

// listMyOrders handles GET /orders
func (s *Server) listMyOrders(c *gin.Context) {
	userID := currentUserID(c)

	s.store.mu.Lock()
	orders := s.store.ordersOf(userID)
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder handles GET /orders/:id. A foreign-owned order is
// indistinguishable from a missing one.
func (s *Server) getOrder(c *gin.Context) {
	userID := currentUserID(c)
	role, _ := c.Get("role")

	s.store.mu.Lock()
	o, ok := s.store.orders[c.Param("id")]
	var snapshot order.Order
	if ok {
		snapshot = *o
	}
	s.store.mu.Unlock()

	if !ok || (snapshot.UserID != userID && !role.(session.Role).Can(session.RoleAdmin)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": snapshot})
}

// adminListOrders handles GET /admin/orders
func (s *Server) adminListOrders(c *gin.Context) {
	s.store.mu.Lock()
	orders := s.store.allOrders()
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// adminUpdateOrderStatus handles PUT /admin/orders/:id/status
func (s *Server) adminUpdateOrderStatus(c *gin.Context) {
	var update order.StatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if update.PaymentStatus == nil && update.OrderStatus == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if update.PaymentStatus != nil && !update.PaymentStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment status"})
		return
	}
	if update.OrderStatus != nil && !update.OrderStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	o, ok := s.store.orders[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if update.PaymentStatus != nil {
		o.PaymentStatus = *update.PaymentStatus
	}
	if update.OrderStatus != nil {
		o.Status = *update.OrderStatus
		if o.Status == order.StatusDelivered && o.DeliveredAt == nil {
			now := time.Now().UTC()
			o.DeliveredAt = &now
		}
	}

	c.JSON(http.StatusOK, gin.H{"order": *o})
}

// adminDeleteOrder handles DELETE /admin/orders/:id
func (s *Server) adminDeleteOrder(c *gin.Context) {
	s.store.mu.Lock()
	removed := s.store.removeOrder(c.Param("id"))
	s.store.mu.Unlock()

	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}
