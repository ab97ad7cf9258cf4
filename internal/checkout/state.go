// internal/checkout/state.go
package checkout

// State is the checkout flow's position. Transitions only move through
// Flow methods; a failed step returns the flow to the pre-failure state
// and never unwinds steps that already succeeded.
type State string

const (
	StateLoading          State = "loading"
	StateBlocked          State = "blocked" // empty cart, re-enterable only from the cart
	StateSelectingAddress State = "selecting_address"
	StateAddingAddress    State = "adding_address"
	StateSelectingPayment State = "selecting_payment"
	StateAwaitingCard     State = "awaiting_card_confirmation"
	StatePlacingOrder     State = "placing_order"
	StateClearingCart     State = "clearing_cart"
	StateDone             State = "done"
)

// Terminal reports whether the flow can make no further progress
func (s State) Terminal() bool {
	return s == StateDone || s == StateBlocked
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}
