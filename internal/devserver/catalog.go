// internal/devserver/catalog.go
package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
)

// listProducts handles GET /products
func (s *Server) listProducts(c *gin.Context) {
	s.store.mu.Lock()
	products := s.store.listProducts()
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles GET /products/:id
func (s *Server) getProduct(c *gin.Context) {
	s.store.mu.Lock()
	p, ok := s.store.products[c.Param("id")]
	var snapshot catalog.Product
	if ok {
		snapshot = *p
	}
	s.store.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": snapshot})
}

// listCategoryProducts handles GET /categories/:category/products
func (s *Server) listCategoryProducts(c *gin.Context) {
	category := c.Param("category")

	s.store.mu.Lock()
	all := s.store.listProducts()
	s.store.mu.Unlock()

	products := []catalog.Product{}
	for _, p := range all {
		if p.Category == category {
			products = append(products, p)
		}
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}
