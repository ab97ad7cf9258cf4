// internal/checkout/flow.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/api"
	"github.com/your-org/ecommerce-storefront/internal/domain/address"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
	"github.com/your-org/ecommerce-storefront/internal/domain/payment"
)

var (
	// ErrEmptyCart blocks checkout entirely until the user returns to
	// the cart and adds something.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrSubmitInProgress rejects a second submission while one is
	// already running. Prevents duplicate orders from double submission.
	ErrSubmitInProgress = errors.New("an order submission is already in progress")

	// ErrFlowOver indicates the flow reached a terminal state and must
	// be recreated.
	ErrFlowOver = errors.New("checkout flow is over")
)

// DeclinedError is a terminal non-success from the card processor. The
// flow returns to payment selection; the message is shown as-is.
type DeclinedError struct {
	Status  payment.ConfirmStatus
	Message string
}

func (e *DeclinedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment %s", e.Status)
	}
	return fmt.Sprintf("payment %s: %s", e.Status, e.Message)
}

// CartAPI is the slice of the cart client the flow needs
type CartAPI interface {
	Fetch(ctx context.Context) (*cart.Cart, error)
	Clear(ctx context.Context) (*cart.Cart, error)
}

// AddressBook is the slice of the address client the flow needs
type AddressBook interface {
	List(ctx context.Context) ([]address.Address, error)
	Create(ctx context.Context, form address.Form) (*address.Address, error)
}

// Payments is the slice of the payment client the flow needs
type Payments interface {
	CreateIntent(ctx context.Context, amount int64) (*payment.Authorization, error)
	Confirm(ctx context.Context, auth *payment.Authorization, card payment.CardDetails) (*payment.Result, error)
}

// Orders is the slice of the order client the flow needs
type Orders interface {
	Create(ctx context.Context, req order.CreateRequest) (*order.Order, error)
}

// Notifier surfaces non-fatal outcomes to the user without coupling
// the flow to any particular UI.
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
}

// Flow coordinates one checkout attempt: cart and address loading,
// address resolution, optional card confirmation, order placement and
// the post-order cart clear.
type Flow struct {
	carts     CartAPI
	addresses AddressBook
	payments  Payments
	orders    Orders
	notify    Notifier
	logger    *logrus.Logger

	mu         sync.Mutex
	state      State
	cart       *cart.Cart
	saved      []address.Address
	selectedID string
	form       *address.Form
	method     order.PaymentMethod
	orderID    string
	submitting bool
}

// NewFlow creates a checkout flow in its initial state
func NewFlow(carts CartAPI, addresses AddressBook, payments Payments, orders Orders, notify Notifier, logger *logrus.Logger) *Flow {
	return &Flow{
		carts:     carts,
		addresses: addresses,
		payments:  payments,
		orders:    orders,
		notify:    notify,
		logger:    logger,
		state:     StateLoading,
	}
}

// State returns the flow's current state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Cart returns the cart snapshot loaded at entry
func (f *Flow) Cart() *cart.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cart
}

// Addresses returns the saved addresses loaded at entry
func (f *Flow) Addresses() []address.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

// SelectedAddressID returns the currently selected saved address id,
// empty when the user is typing a fresh address.
func (f *Flow) SelectedAddressID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectedID
}

// OrderID returns the created order's id once the flow is done
func (f *Flow) OrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderID
}

// Begin fetches the cart and the address book concurrently. An empty
// cart blocks checkout entirely; a default address is auto-selected
// when one exists, otherwise the flow forces the address form.
func (f *Flow) Begin(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateLoading {
		f.mu.Unlock()
		return fmt.Errorf("checkout already started (state %s)", f.state)
	}
	f.mu.Unlock()

	var (
		wg       sync.WaitGroup
		loaded   *cart.Cart
		saved    []address.Address
		cartErr  error
		addrsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		loaded, cartErr = f.carts.Fetch(ctx)
	}()
	go func() {
		defer wg.Done()
		saved, addrsErr = f.addresses.List(ctx)
	}()
	wg.Wait()

	if cartErr != nil {
		f.notify.Error("Failed to fetch cart")
		return fmt.Errorf("failed to load cart: %w", cartErr)
	}
	if addrsErr != nil {
		// Recoverable: the user can still type a fresh address
		f.logger.WithError(addrsErr).Warn("failed to load address book")
		saved = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.cart = loaded
	f.saved = saved

	if f.cart.IsEmpty() {
		f.state = StateBlocked
		return ErrEmptyCart
	}

	if def := address.DefaultOf(saved); def != nil {
		f.selectedID = def.ID
		f.state = StateSelectingAddress
	} else if len(saved) > 0 {
		f.state = StateSelectingAddress
	} else {
		f.state = StateAddingAddress
	}
	return nil
}

// SelectAddress picks one of the saved addresses as the shipping
// destination and discards any in-progress address form.
func (f *Flow) SelectAddress(addressID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureChoosing(); err != nil {
		return err
	}

	for _, a := range f.saved {
		if a.ID == addressID {
			f.selectedID = a.ID
			f.form = nil
			f.state = StateSelectingPayment
			return nil
		}
	}
	return api.NewValidationError("address", "no saved address with that id")
}

// EnterNewAddress switches to the address form. Switching back is only
// possible while at least one saved address exists.
func (f *Flow) EnterNewAddress() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureChoosing(); err != nil {
		return err
	}
	f.state = StateAddingAddress
	return nil
}

// UseNewAddress validates the form and records it as this order's
// shipping destination. The address is persisted at submit time; its
// server-assigned id becomes the shipping reference.
func (f *Flow) UseNewAddress(form address.Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateAddingAddress {
		return fmt.Errorf("not adding an address (state %s)", f.state)
	}
	if err := form.Validate(); err != nil {
		return err
	}

	f.form = &form
	f.selectedID = ""
	f.state = StateSelectingPayment
	return nil
}

// SelectPayment records the payment method. Values outside the fixed
// enumeration are rejected here, before any submission.
func (f *Flow) SelectPayment(method order.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSelectingPayment {
		return fmt.Errorf("not selecting payment (state %s)", f.state)
	}
	if !method.Valid() {
		return api.NewValidationError("payment_method", fmt.Sprintf("invalid payment method %q", method))
	}

	f.method = method
	return nil
}

// Submit runs the committed sequence: resolve the shipping address,
// confirm the charge when the method requires it, place the order and
// clear the cart. Each step gates the next; a failed step leaves the
// user in the pre-failure state, and nothing that already succeeded is
// unwound. Submitting twice concurrently is rejected.
func (f *Flow) Submit(ctx context.Context, card *payment.CardDetails) (string, error) {
	f.mu.Lock()
	if f.state.Terminal() {
		f.mu.Unlock()
		return "", ErrFlowOver
	}
	if f.submitting {
		f.mu.Unlock()
		return "", ErrSubmitInProgress
	}
	if f.state != StateSelectingPayment {
		f.mu.Unlock()
		return "", fmt.Errorf("checkout is not ready to submit (state %s)", f.state)
	}
	if f.method == "" {
		f.mu.Unlock()
		return "", api.NewValidationError("payment_method", "select a payment method")
	}
	if f.cart.IsEmpty() {
		f.state = StateBlocked
		f.mu.Unlock()
		return "", ErrEmptyCart
	}
	f.submitting = true
	snapshot := *f.cart
	method := f.method
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	// Step 1: shipping destination. No order may ever be attempted
	// without a resolvable one; a failed save sends the user back to
	// the address form.
	shippingID, err := f.resolveShipping(ctx)
	if err != nil {
		return "", err
	}

	// Step 2: card confirmation, for methods that need it
	if method.RequiresConfirmation() {
		if err := f.confirmCard(ctx, snapshot.TotalPrice, card); err != nil {
			return "", err
		}
	}

	// Step 3: order placement
	placed, err := f.placeOrder(ctx, &snapshot, shippingID, method)
	if err != nil {
		return "", err
	}

	// Step 4: clear the cart. The order already exists, so failure here
	// is reported but does not block the confirmation view.
	f.setState(StateClearingCart)
	if _, err := f.carts.Clear(ctx); err != nil {
		f.logger.WithError(err).WithField("order_id", placed.ID).Warn("cart clear failed after order creation")
		f.notify.Error("Order placed, but the cart could not be cleared")
	}

	f.mu.Lock()
	f.orderID = placed.ID
	f.state = StateDone
	f.mu.Unlock()

	f.notify.Success("Order placed successfully")
	return placed.ID, nil
}

// resolveShipping returns the shipping address id, persisting the new
// address first when the user typed one.
func (f *Flow) resolveShipping(ctx context.Context) (string, error) {
	f.mu.Lock()
	form := f.form
	selected := f.selectedID
	f.mu.Unlock()

	if form == nil {
		if selected == "" {
			return "", api.NewValidationError("address", "select or add a shipping address")
		}
		return selected, nil
	}

	created, err := f.addresses.Create(ctx, *form)
	if err != nil {
		// The form stays filled in so the user can correct it and
		// submit again.
		f.setState(StateAddingAddress)
		f.notify.Error("Failed to save address")
		return "", fmt.Errorf("failed to save shipping address: %w", err)
	}

	// Keep the saved address selected so a later retry does not create
	// a duplicate.
	f.mu.Lock()
	f.form = nil
	f.selectedID = created.ID
	f.saved = append(f.saved, *created)
	f.mu.Unlock()

	return created.ID, nil
}

// confirmCard obtains an authorization for the cart total and waits
// for the processor's terminal outcome. Declined and errored charges
// both stop the flow; the user returns to payment selection with the
// processor's message, address data intact.
func (f *Flow) confirmCard(ctx context.Context, amount int64, card *payment.CardDetails) error {
	if card == nil {
		return api.NewValidationError("card", "card details are required for this payment method")
	}

	f.setState(StateAwaitingCard)

	auth, err := f.payments.CreateIntent(ctx, amount)
	if err != nil {
		f.setState(StateSelectingPayment)
		f.notify.Error("Failed to start payment")
		return fmt.Errorf("failed to create payment authorization: %w", err)
	}

	result, err := f.payments.Confirm(ctx, auth, *card)
	if err != nil {
		f.setState(StateSelectingPayment)
		f.notify.Error("Payment failed")
		return fmt.Errorf("payment confirmation failed: %w", err)
	}

	if !result.Proceed() {
		f.setState(StateSelectingPayment)
		declined := &DeclinedError{Status: result.Status, Message: result.Message}
		if result.Status == payment.ConfirmDeclined {
			f.notify.Error("Card declined: " + result.Message)
		} else {
			f.notify.Error("Payment error: " + result.Message)
		}
		return declined
	}

	return nil
}

// placeOrder snapshots the cart lines into order items and submits the
// order. The order status is never supplied; the server assigns it.
func (f *Flow) placeOrder(ctx context.Context, snapshot *cart.Cart, shippingID string, method order.PaymentMethod) (*order.Order, error) {
	f.setState(StatePlacingOrder)

	items := make([]order.Item, len(snapshot.Items))
	for i, line := range snapshot.Items {
		items[i] = order.Item{
			ProductID: line.Product.ID,
			Title:     line.Product.Title,
			Price:     line.Product.Price,
			Quantity:  line.Quantity,
			Image:     line.Product.Image(),
		}
	}

	placed, err := f.orders.Create(ctx, order.CreateRequest{
		Items:             items,
		ShippingAddressID: shippingID,
		PaymentMethod:     method,
		Subtotal:          snapshot.TotalPrice,
		TotalAmount:       snapshot.TotalPrice,
	})
	if err != nil {
		f.setState(StateSelectingPayment)
		f.notify.Error("Failed to place order")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	return placed, nil
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *Flow) ensureChoosing() error {
	switch f.state {
	case StateSelectingAddress, StateAddingAddress, StateSelectingPayment:
		return nil
	case StateLoading:
		return fmt.Errorf("checkout not started")
	default:
		if f.state.Terminal() {
			return ErrFlowOver
		}
		return fmt.Errorf("cannot change address now (state %s)", f.state)
	}
}
