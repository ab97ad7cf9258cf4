// internal/devserver/server.go
package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/session"
	"golang.org/x/crypto/bcrypt"
)

// Server is an in-memory stand-in for the commerce API and the card
// processor, so the storefront runs and tests with zero infrastructure.
// It enforces the contracts the client must respect but cannot enforce
// itself: one cart per identity, a single default address, order items
// frozen at creation, server-assigned statuses and role gating.
type Server struct {
	cfg    *config.Config
	logger *logrus.Logger
	store  *store
}

// NewServer creates a devserver with seeded accounts and products
func NewServer(cfg *config.Config, logger *logrus.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  newStore(),
	}
	s.seed()
	return s
}

// Handler returns the commerce API, mounted under /api
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
		}

		api.GET("/products", s.listProducts)
		api.GET("/products/:id", s.getProduct)
		api.GET("/categories/:category/products", s.listCategoryProducts)

		authed := api.Group("")
		authed.Use(s.authRequired())
		{
			authed.GET("/cart", s.getCart)
			authed.POST("/cart/items", s.addCartItem)
			authed.PUT("/cart/items/:id", s.updateCartItem)
			authed.DELETE("/cart/items/:id", s.removeCartItem)
			authed.DELETE("/cart", s.clearCart)

			authed.GET("/addresses", s.listAddresses)
			authed.POST("/addresses", s.createAddress)
			authed.PUT("/addresses/:id", s.updateAddress)
			authed.DELETE("/addresses/:id", s.deleteAddress)
			authed.PUT("/addresses/:id/default", s.setDefaultAddress)

			authed.POST("/orders", s.createOrder)
			authed.GET("/orders", s.listMyOrders)
			authed.GET("/orders/:id", s.getOrder)

			authed.POST("/payment/create-payment-intent", s.createPaymentIntent)
		}

		admin := api.Group("/admin")
		admin.Use(s.authRequired(), s.adminRequired())
		{
			admin.GET("/orders", s.adminListOrders)
			admin.PUT("/orders/:id/status", s.adminUpdateOrderStatus)
			admin.DELETE("/orders/:id", s.adminDeleteOrder)
		}
	}

	return engine
}

// ProcessorHandler returns the fake card processor, a separate surface
// on its own base URL. Card data arrives here directly, never through
// the commerce API handler.
func (s *Server) ProcessorHandler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	v1 := engine.Group("/v1")
	{
		v1.POST("/intents/confirm", s.confirmIntent)
	}

	return engine
}

// seed loads the fixed development dataset
func (s *Server) seed() {
	hash := func(password string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.DevServer.BcryptCost)
		if err != nil {
			s.logger.WithError(err).Fatal("failed to hash seed password")
		}
		return string(h)
	}

	s.store.addAccount(&account{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: hash("admin12345"),
		Role:         session.RoleAdmin,
	})
	s.store.addAccount(&account{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: hash("demo12345"),
		Role:         session.RoleBuyer,
	})

	s.store.addProduct(catalog.Product{
		Title:    "Wireless Headphones",
		Price:    299900,
		Images:   []string{"/images/headphones.jpg"},
		Quantity: 40,
		Category: "electronics",
	})
	s.store.addProduct(catalog.Product{
		Title:    "Mechanical Keyboard",
		Price:    549900,
		Images:   []string{"/images/keyboard.jpg"},
		Quantity: 25,
		Category: "electronics",
	})
	s.store.addProduct(catalog.Product{
		Title:    "Cotton T-Shirt",
		Price:    79900,
		Images:   []string{"/images/tshirt.jpg"},
		Quantity: 120,
		Category: "apparel",
	})
}
