// internal/checkout/flow_test.go
package checkout

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/api"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/address"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
	"github.com/your-org/ecommerce-storefront/internal/domain/payment"
	"github.com/your-org/ecommerce-storefront/internal/session"
)

type stubCarts struct {
	cart     *cart.Cart
	fetchErr error
	clearErr error
	cleared  int
}

func (s *stubCarts) Fetch(ctx context.Context) (*cart.Cart, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.cart, nil
}

func (s *stubCarts) Clear(ctx context.Context) (*cart.Cart, error) {
	s.cleared++
	if s.clearErr != nil {
		return nil, s.clearErr
	}
	return &cart.Cart{}, nil
}

type stubAddresses struct {
	saved       []address.Address
	listErr     error
	created     *address.Address
	createErr   error
	createCalls int
}

func (s *stubAddresses) List(ctx context.Context) ([]address.Address, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.saved, nil
}

func (s *stubAddresses) Create(ctx context.Context, form address.Form) (*address.Address, error) {
	s.createCalls++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.created, nil
}

type stubPayments struct {
	auth       *payment.Authorization
	intentErr  error
	result     *payment.Result
	confirmErr error
	intents    int
	confirms   int
}

func (s *stubPayments) CreateIntent(ctx context.Context, amount int64) (*payment.Authorization, error) {
	s.intents++
	if s.intentErr != nil {
		return nil, s.intentErr
	}
	return s.auth, nil
}

func (s *stubPayments) Confirm(ctx context.Context, auth *payment.Authorization, card payment.CardDetails) (*payment.Result, error) {
	s.confirms++
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return s.result, nil
}

type stubOrders struct {
	placed *order.Order
	err    error
	gotReq order.CreateRequest
	calls  int
}

func (s *stubOrders) Create(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	s.calls++
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.placed, nil
}

type recordingNotifier struct {
	successes []string
	failures  []string
	infos     []string
}

func (n *recordingNotifier) Success(message string) { n.successes = append(n.successes, message) }
func (n *recordingNotifier) Error(message string)   { n.failures = append(n.failures, message) }
func (n *recordingNotifier) Info(message string)    { n.infos = append(n.infos, message) }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func twoLineCart() *cart.Cart {
	return &cart.Cart{
		Items: []cart.Line{
			{Product: catalog.Product{ID: "p1", Title: "Widget", Price: 5000, Images: []string{"widget.jpg"}}, Quantity: 2},
			{Product: catalog.Product{ID: "p2", Title: "Gadget", Price: 10000}, Quantity: 1},
		},
		TotalPrice: 20000,
	}
}

func defaultAddress() address.Address {
	return address.Address{ID: "addr-1", Street: "1 Main St", City: "Springfield", Zip: "12345", IsDefault: true}
}

func TestFlowCODHappyPath(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	payments := &stubPayments{}
	orders := &stubOrders{placed: &order.Order{ID: "order-1"}}
	notify := &recordingNotifier{}

	flow := NewFlow(carts, addresses, payments, orders, notify, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	assert.Equal(t, StateSelectingAddress, flow.State())
	assert.Equal(t, "addr-1", flow.SelectedAddressID())

	require.NoError(t, flow.SelectAddress("addr-1"))
	require.NoError(t, flow.SelectPayment(order.MethodCOD))

	orderID, err := flow.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "order-1", orderID)
	assert.Equal(t, StateDone, flow.State())
	assert.Equal(t, "order-1", flow.OrderID())

	// Order request carries the cart snapshot, not live references
	require.Len(t, orders.gotReq.Items, 2)
	assert.Equal(t, "Widget", orders.gotReq.Items[0].Title)
	assert.Equal(t, int64(5000), orders.gotReq.Items[0].Price)
	assert.Equal(t, "widget.jpg", orders.gotReq.Items[0].Image)
	assert.Equal(t, int64(20000), orders.gotReq.Subtotal)
	assert.Equal(t, int64(20000), orders.gotReq.TotalAmount)
	assert.Equal(t, "addr-1", orders.gotReq.ShippingAddressID)
	assert.Equal(t, order.MethodCOD, orders.gotReq.PaymentMethod)

	// COD never touches the processor
	assert.Zero(t, payments.intents)
	assert.Zero(t, payments.confirms)

	assert.Equal(t, 1, carts.cleared)
	assert.NotEmpty(t, notify.successes)
}

func TestFlowEmptyCartBlocks(t *testing.T) {
	carts := &stubCarts{cart: &cart.Cart{}}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	flow := NewFlow(carts, addresses, &stubPayments{}, &stubOrders{}, &recordingNotifier{}, quietLogger())

	err := flow.Begin(context.Background())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StateBlocked, flow.State())

	// Every interaction is rejected once blocked
	assert.ErrorIs(t, flow.SelectAddress("addr-1"), ErrFlowOver)
	_, err = flow.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrFlowOver)
}

func TestFlowCartFetchFailureIsFatal(t *testing.T) {
	carts := &stubCarts{fetchErr: errors.New("boom")}
	notify := &recordingNotifier{}
	flow := NewFlow(carts, &stubAddresses{}, &stubPayments{}, &stubOrders{}, notify, quietLogger())

	err := flow.Begin(context.Background())
	require.Error(t, err)
	assert.NotEmpty(t, notify.failures)
}

func TestFlowAddressListFailureIsRecoverable(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{listErr: errors.New("boom")}
	flow := NewFlow(carts, addresses, &stubPayments{}, &stubOrders{}, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	assert.Equal(t, StateAddingAddress, flow.State())
	assert.Empty(t, flow.Addresses())
}

func TestFlowNoAddressesForcesForm(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	flow := NewFlow(carts, &stubAddresses{}, &stubPayments{}, &stubOrders{}, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	assert.Equal(t, StateAddingAddress, flow.State())
}

func TestFlowNewAddressPersistedAtSubmit(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{created: &address.Address{ID: "addr-new", Street: "9 Elm", City: "Shelbyville", Zip: "99999"}}
	orders := &stubOrders{placed: &order.Order{ID: "order-2"}}
	flow := NewFlow(carts, addresses, &stubPayments{}, orders, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.UseNewAddress(address.Form{Street: "9 Elm", City: "Shelbyville", Zip: "99999"}))
	require.NoError(t, flow.SelectPayment(order.MethodCOD))

	_, err := flow.Submit(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, addresses.createCalls)
	assert.Equal(t, "addr-new", orders.gotReq.ShippingAddressID)
	assert.Equal(t, "addr-new", flow.SelectedAddressID())
}

func TestFlowNewAddressValidation(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	flow := NewFlow(carts, &stubAddresses{}, &stubPayments{}, &stubOrders{}, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))

	err := flow.UseNewAddress(address.Form{City: "Shelbyville", Zip: "99999"})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Equal(t, StateAddingAddress, flow.State())
}

func TestFlowAddressSaveFailureReturnsToForm(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{createErr: errors.New("boom")}
	orders := &stubOrders{placed: &order.Order{ID: "order-7"}}
	notify := &recordingNotifier{}
	flow := NewFlow(carts, addresses, &stubPayments{}, orders, notify, quietLogger())

	form := address.Form{Street: "9 Elm", City: "Shelbyville", Zip: "99999"}
	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.UseNewAddress(form))
	require.NoError(t, flow.SelectPayment(order.MethodCOD))

	_, err := flow.Submit(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, StateAddingAddress, flow.State())
	assert.Zero(t, orders.calls)
	assert.Contains(t, notify.failures, "Failed to save address")

	// Same flow, same form: once the save works the order goes through
	addresses.createErr = nil
	addresses.created = &address.Address{ID: "addr-retry", Street: form.Street, City: form.City, Zip: form.Zip}
	require.NoError(t, flow.UseNewAddress(form))
	require.NoError(t, flow.SelectPayment(order.MethodCOD))

	orderID, err := flow.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "order-7", orderID)
	assert.Equal(t, "addr-retry", orders.gotReq.ShippingAddressID)
}

func TestFlowInvalidPaymentMethodRejected(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	flow := NewFlow(carts, addresses, &stubPayments{}, &stubOrders{}, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.SelectAddress("addr-1"))

	err := flow.SelectPayment(order.PaymentMethod("Barter"))
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestFlowSubmitWithoutMethod(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	flow := NewFlow(carts, addresses, &stubPayments{}, &stubOrders{}, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.SelectAddress("addr-1"))

	_, err := flow.Submit(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestFlowCardDeclinedReturnsToPaymentSelection(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	payments := &stubPayments{
		auth:   &payment.Authorization{ClientSecret: "pi_x_secret_y", Amount: 20000},
		result: &payment.Result{Status: payment.ConfirmDeclined, Message: "Your card was declined."},
	}
	orders := &stubOrders{}
	notify := &recordingNotifier{}
	flow := NewFlow(carts, addresses, payments, orders, notify, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.SelectAddress("addr-1"))
	require.NoError(t, flow.SelectPayment(order.MethodCreditCard))

	card := &payment.CardDetails{Number: "4000000000000002", ExpMonth: "12", ExpYear: "2030", CVC: "123"}
	_, err := flow.Submit(context.Background(), card)

	var declined *DeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, payment.ConfirmDeclined, declined.Status)

	// No order, cart untouched, user back at payment selection
	assert.Zero(t, orders.calls)
	assert.Zero(t, carts.cleared)
	assert.Equal(t, StateSelectingPayment, flow.State())
	assert.Contains(t, notify.failures, "Card declined: Your card was declined.")

	// Retry with a working card succeeds on the same flow
	payments.result = &payment.Result{Status: payment.ConfirmSucceeded}
	orders.placed = &order.Order{ID: "order-3"}
	orderID, err := flow.Submit(context.Background(), &payment.CardDetails{Number: "4242424242424242", ExpMonth: "12", ExpYear: "2030", CVC: "123"})
	require.NoError(t, err)
	assert.Equal(t, "order-3", orderID)
}

func TestFlowCardRequiredForCardMethods(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	flow := NewFlow(carts, addresses, &stubPayments{}, &stubOrders{}, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.SelectAddress("addr-1"))
	require.NoError(t, flow.SelectPayment(order.MethodUPI))

	_, err := flow.Submit(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestFlowIntentAmountMatchesCartTotal(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	var gotAmount int64
	payments := &amountRecordingPayments{result: &payment.Result{Status: payment.ConfirmSucceeded}, gotAmount: &gotAmount}
	orders := &stubOrders{placed: &order.Order{ID: "order-4"}}
	flow := NewFlow(carts, addresses, payments, orders, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.SelectAddress("addr-1"))
	require.NoError(t, flow.SelectPayment(order.MethodDebitCard))

	_, err := flow.Submit(context.Background(), &payment.CardDetails{Number: "4242424242424242", ExpMonth: "1", ExpYear: "2031", CVC: "000"})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), gotAmount)
}

type amountRecordingPayments struct {
	result    *payment.Result
	gotAmount *int64
}

func (p *amountRecordingPayments) CreateIntent(ctx context.Context, amount int64) (*payment.Authorization, error) {
	*p.gotAmount = amount
	return &payment.Authorization{ClientSecret: "pi_a_secret_b", Amount: amount}, nil
}

func (p *amountRecordingPayments) Confirm(ctx context.Context, auth *payment.Authorization, card payment.CardDetails) (*payment.Result, error) {
	return p.result, nil
}

func TestFlowClearFailureStillCompletes(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart(), clearErr: errors.New("boom")}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	orders := &stubOrders{placed: &order.Order{ID: "order-5"}}
	notify := &recordingNotifier{}
	flow := NewFlow(carts, addresses, &stubPayments{}, orders, notify, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.SelectAddress("addr-1"))
	require.NoError(t, flow.SelectPayment(order.MethodCOD))

	orderID, err := flow.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "order-5", orderID)
	assert.Equal(t, StateDone, flow.State())
	assert.Contains(t, notify.failures, "Order placed, but the cart could not be cleared")
}

func TestFlowOrderFailureReturnsToPaymentSelection(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	orders := &stubOrders{err: errors.New("boom")}
	flow := NewFlow(carts, addresses, &stubPayments{}, orders, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.SelectAddress("addr-1"))
	require.NoError(t, flow.SelectPayment(order.MethodCOD))

	_, err := flow.Submit(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, StateSelectingPayment, flow.State())
	assert.Zero(t, carts.cleared)
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateBlocked.Terminal())
	assert.False(t, StateSelectingPayment.Terminal())
	assert.False(t, StateAddingAddress.Terminal())
	assert.False(t, StateLoading.Terminal())
}

// TestFlowBeginExpiredCredential runs Begin through real clients
// against a server that rejects everything with 401. Both loads hit the
// rejection in parallel and each destroys the stored credential while
// the other is still reading it, so this doubles as a race check on the
// session store.
func TestFlowBeginExpiredCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sessions := session.NewStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, sessions.Load())
	claims := jwt.MapClaims{
		"sub":      "user-1",
		"username": "alice",
		"role":     "buyer",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, sessions.Save(token))

	cfg := &config.Config{}
	cfg.API.BaseURL = srv.URL
	cfg.API.Timeout = 5 * time.Second

	apiClient := api.NewClient(cfg, sessions, quietLogger())
	flow := NewFlow(cart.NewClient(apiClient), address.NewClient(apiClient), &stubPayments{}, &stubOrders{}, &recordingNotifier{}, quietLogger())

	err = flow.Begin(context.Background())
	require.ErrorIs(t, err, session.ErrUnauthenticated)

	// The rejected credential is gone
	_, err = sessions.Current()
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
}

// blockingOrders holds order creation open until released, so a second
// submission can be attempted while the first is in flight.
type blockingOrders struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingOrders) Create(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	close(b.entered)
	<-b.release
	return &order.Order{ID: "order-6"}, nil
}

func TestFlowRejectsConcurrentSubmit(t *testing.T) {
	carts := &stubCarts{cart: twoLineCart()}
	addresses := &stubAddresses{saved: []address.Address{defaultAddress()}}
	orders := &blockingOrders{entered: make(chan struct{}), release: make(chan struct{})}
	flow := NewFlow(carts, addresses, &stubPayments{}, orders, &recordingNotifier{}, quietLogger())

	require.NoError(t, flow.Begin(context.Background()))
	require.NoError(t, flow.SelectAddress("addr-1"))
	require.NoError(t, flow.SelectPayment(order.MethodCOD))

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), nil)
		done <- err
	}()

	<-orders.entered
	_, err := flow.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(orders.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateDone, flow.State())
}
