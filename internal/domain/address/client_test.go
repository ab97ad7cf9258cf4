// internal/domain/address/client_test.go
package address

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/api"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/session"
)

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	sessions := session.NewStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, sessions.Load())
	claims := jwt.MapClaims{"sub": "user-1", "username": "alice", "role": "buyer"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, sessions.Save(token))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5 * time.Second

	return NewClient(api.NewClient(cfg, sessions, logger))
}

func TestFormValidate(t *testing.T) {
	valid := Form{Street: "1 Main St", City: "Springfield", Zip: "12345"}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name  string
		form  Form
		field string
	}{
		{"missing street", Form{City: "Springfield", Zip: "12345"}, "street"},
		{"missing city", Form{Street: "1 Main St", Zip: "12345"}, "city"},
		{"missing zip", Form{Street: "1 Main St", City: "Springfield"}, "zip"},
		{"whitespace only", Form{Street: "   ", City: "Springfield", Zip: "12345"}, "street"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.form.Validate()
			require.Error(t, err)
			var ve *api.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestDefaultOf(t *testing.T) {
	addresses := []Address{
		{ID: "a1"},
		{ID: "a2", IsDefault: true},
		{ID: "a3"},
	}
	def := DefaultOf(addresses)
	require.NotNil(t, def)
	assert.Equal(t, "a2", def.ID)

	assert.Nil(t, DefaultOf([]Address{{ID: "a1"}}))
	assert.Nil(t, DefaultOf(nil))
}

func TestCreateValidatesBeforeCalling(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)
	_, err := client.Create(context.Background(), Form{City: "Springfield"})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.False(t, called)
}

func TestSetDefaultRefetchesList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var defaulted string
	engine.PUT("/addresses/:id/default", func(c *gin.Context) {
		defaulted = c.Param("id")
		c.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
	})
	engine.GET("/addresses", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"addresses": []Address{
			{ID: defaulted, Street: "2 Oak Ave", City: "Springfield", Zip: "12345", IsDefault: true},
			{ID: "a1", Street: "1 Main St", City: "Springfield", Zip: "12345"},
		}})
	})

	srv := httptest.NewServer(engine)
	defer srv.Close()

	client := newClient(t, srv.URL)
	addresses, err := client.SetDefault(context.Background(), "a2")
	require.NoError(t, err)
	assert.Equal(t, "a2", defaulted)

	// The returned list is the server's, with exactly one default
	require.Len(t, addresses, 2)
	def := DefaultOf(addresses)
	require.NotNil(t, def)
	assert.Equal(t, "a2", def.ID)
}

func TestCreateReturnsServerAssignedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/addresses", func(c *gin.Context) {
		var form Form
		require.NoError(t, c.ShouldBindJSON(&form))
		c.JSON(http.StatusCreated, gin.H{"address": Address{
			ID: "addr-42", Label: form.Label, Street: form.Street,
			City: form.City, State: form.State, Zip: form.Zip, Country: form.Country,
		}})
	})

	srv := httptest.NewServer(engine)
	defer srv.Close()

	client := newClient(t, srv.URL)
	created, err := client.Create(context.Background(), Form{Street: "9 Elm", City: "Shelbyville", Zip: "99999"})
	require.NoError(t, err)
	assert.Equal(t, "addr-42", created.ID)
	assert.Equal(t, "9 Elm", created.Street)
}
