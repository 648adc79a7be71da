package checkout

import "errors"

// Validation errors: the buyer is redirected back to data entry; nothing is
// alarming and nothing in the session is touched.
var (
	ErrProfileIncomplete = errors.New("customer profile is missing or incomplete")
	ErrEmptyCart         = errors.New("cart is empty")
)

// ErrCheckoutInFlight means another checkout for the same session is already
// assembling or awaiting the gateway; the duplicate submission is rejected.
var ErrCheckoutInFlight = errors.New("a checkout is already in flight for this session")
