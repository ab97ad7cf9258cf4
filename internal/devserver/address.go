// internal/devserver/address.go
package devserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/ecommerce-storefront/internal/domain/address"
)

type addressRequest struct {
	Label     string `json:"label"`
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state"`
	Zip       string `json:"zip" binding:"required"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

func (r *addressRequest) blankRequired() bool {
	return strings.TrimSpace(r.Street) == "" ||
		strings.TrimSpace(r.City) == "" ||
		strings.TrimSpace(r.Zip) == ""
}

// listAddresses handles GET /addresses, default first
func (s *Server) listAddresses(c *gin.Context) {
	userID := currentUserID(c)

	s.store.mu.Lock()
	book := s.store.addresses[userID]
	out := make([]address.Address, 0, len(book))
	for _, a := range book {
		if a.IsDefault {
			out = append([]address.Address{a}, out...)
		} else {
			out = append(out, a)
		}
	}
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"addresses": out})
}

// createAddress handles POST /addresses
func (s *Server) createAddress(c *gin.Context) {
	userID := currentUserID(c)

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.blankRequired() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "street, city and zip are required"})
		return
	}

	created := address.Address{
		ID:        uuid.NewString(),
		Label:     req.Label,
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}

	s.store.mu.Lock()
	s.store.addresses[userID] = append(s.store.addresses[userID], created)
	if created.IsDefault {
		s.store.setDefaultLocked(userID, created.ID)
	}
	s.store.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"address": created})
}

// updateAddress handles PUT /addresses/:id
func (s *Server) updateAddress(c *gin.Context) {
	userID := currentUserID(c)
	addressID := c.Param("id")

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.blankRequired() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "street, city and zip are required"})
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	idx, existing := s.store.addressByID(userID, addressID)
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}

	existing.Label = req.Label
	existing.Street = req.Street
	existing.City = req.City
	existing.State = req.State
	existing.Zip = req.Zip
	existing.Country = req.Country
	if req.IsDefault {
		s.store.setDefaultLocked(userID, addressID)
	}

	c.JSON(http.StatusOK, gin.H{"address": *existing})
}

// deleteAddress handles DELETE /addresses/:id
func (s *Server) deleteAddress(c *gin.Context) {
	userID := currentUserID(c)
	addressID := c.Param("id")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	idx, _ := s.store.addressByID(userID, addressID)
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}

	book := s.store.addresses[userID]
	s.store.addresses[userID] = append(book[:idx], book[idx+1:]...)

	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

// setDefaultAddress handles PUT /addresses/:id/default. The server,
// not the client, recomputes which single address is default.
func (s *Server) setDefaultAddress(c *gin.Context) {
	userID := currentUserID(c)
	addressID := c.Param("id")

	s.store.mu.Lock()
	found := s.store.setDefaultLocked(userID, addressID)
	s.store.mu.Unlock()

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
}
