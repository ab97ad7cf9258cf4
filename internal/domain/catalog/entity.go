// internal/domain/catalog/entity.go
package catalog

// Product is a read-only product snapshot as returned by the catalog
// service. Prices are in minor currency units.
type Product struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    int64    `json:"price"`
	Images   []string `json:"images"`
	Quantity int      `json:"quantity"`
	Category string   `json:"category"`
}

// Image returns the product's primary image, if any
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
