// internal/domain/address/entity.go
package address

import (
	"strings"

	"github.com/your-org/ecommerce-storefront/internal/api"
)

// Address is one saved shipping address in the user's address book.
// At most one address per identity is the default; the server enforces
// that, the client only requests it.
type Address struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

// Form carries address fields for create and update calls
type Form struct {
	Label     string `json:"label"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

// Validate rejects a form whose required fields are blank. Runs before
// any network call; the message names the offending field.
func (f *Form) Validate() error {
	if strings.TrimSpace(f.Street) == "" {
		return api.NewValidationError("street", "is required")
	}
	if strings.TrimSpace(f.City) == "" {
		return api.NewValidationError("city", "is required")
	}
	if strings.TrimSpace(f.Zip) == "" {
		return api.NewValidationError("zip", "is required")
	}
	return nil
}

// DefaultOf returns the default address from a list, if one exists
func DefaultOf(addresses []Address) *Address {
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i]
		}
	}
	return nil
}
