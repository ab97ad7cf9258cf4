// internal/devserver/store.go
package devserver

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/ecommerce-storefront/internal/domain/address"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
	"github.com/your-org/ecommerce-storefront/internal/session"
)

// account is a seeded or registered identity
type account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         session.Role
}

// cartLine references a product by id; snapshots happen at order time,
// not in the cart.
type cartLine struct {
	ProductID string
	Quantity  int
}

// intent is a payment authorization awaiting confirmation
type intent struct {
	ClientSecret string
	Amount       int64
	Confirmed    bool
}

// store is the devserver's in-memory state. Everything behind one
// mutex; contention is irrelevant at dev scale.
type store struct {
	mu        sync.Mutex
	accounts  map[string]*account          // keyed by account id
	products  map[string]*catalog.Product  // keyed by product id
	productID []string                     // insertion order for stable listings
	carts     map[string][]cartLine        // account id -> lines
	addresses map[string][]address.Address // account id -> address book
	orders    map[string]*order.Order      // order id -> order
	orderIDs  []string                     // insertion order
	intents   map[string]*intent           // client secret -> intent
}

func newStore() *store {
	return &store{
		accounts:  make(map[string]*account),
		products:  make(map[string]*catalog.Product),
		carts:     make(map[string][]cartLine),
		addresses: make(map[string][]address.Address),
		orders:    make(map[string]*order.Order),
		intents:   make(map[string]*intent),
	}
}

func (s *store) addAccount(a *account) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.accounts[a.ID] = a
}

func (s *store) accountByEmail(email string) *account {
	for _, a := range s.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (s *store) addProduct(p catalog.Product) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.products[p.ID] = &p
	s.productID = append(s.productID, p.ID)
}

func (s *store) listProducts() []catalog.Product {
	out := make([]catalog.Product, 0, len(s.productID))
	for _, id := range s.productID {
		out = append(out, *s.products[id])
	}
	return out
}

// buildCart assembles the authoritative cart view for a user: product
// snapshots joined in and the total computed server-side.
func (s *store) buildCart(userID string) *cart.Cart {
	lines := s.carts[userID]
	built := &cart.Cart{Items: []cart.Line{}}
	for _, l := range lines {
		p, ok := s.products[l.ProductID]
		if !ok {
			continue
		}
		built.Items = append(built.Items, cart.Line{Product: *p, Quantity: l.Quantity})
		built.TotalPrice += p.Price * int64(l.Quantity)
	}
	return built
}

// addressByID finds one address in a user's book; returns index -1
// when absent.
func (s *store) addressByID(userID, addressID string) (int, *address.Address) {
	book := s.addresses[userID]
	for i := range book {
		if book[i].ID == addressID {
			return i, &book[i]
		}
	}
	return -1, nil
}

// setDefaultLocked promotes one address and demotes every other, so at
// most one default exists per identity at all times.
func (s *store) setDefaultLocked(userID, addressID string) bool {
	book := s.addresses[userID]
	found := false
	for i := range book {
		if book[i].ID == addressID {
			book[i].IsDefault = true
			found = true
		} else {
			book[i].IsDefault = false
		}
	}
	return found
}

func (s *store) addOrder(o *order.Order) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	s.orders[o.ID] = o
	s.orderIDs = append(s.orderIDs, o.ID)
}

func (s *store) ordersOf(userID string) []order.Order {
	out := []order.Order{}
	for _, id := range s.orderIDs {
		if o, ok := s.orders[id]; ok && o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out
}

func (s *store) allOrders() []order.Order {
	out := []order.Order{}
	for _, id := range s.orderIDs {
		if o, ok := s.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out
}

func (s *store) removeOrder(orderID string) bool {
	if _, ok := s.orders[orderID]; !ok {
		return false
	}
	delete(s.orders, orderID)
	for i, id := range s.orderIDs {
		if id == orderID {
			s.orderIDs = append(s.orderIDs[:i], s.orderIDs[i+1:]...)
			break
		}
	}
	return true
}
