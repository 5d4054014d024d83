package types

import "errors"

// Error taxonomy for the purchase/verification/refund pipeline. Callers
// classify with errors.Is; handlers map each kind to an HTTP status.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidState          = errors.New("invalid state")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrPaymentNotSuccessful  = errors.New("payment not successful")
	ErrIntentExpired         = errors.New("payment intent expired or unknown")
	ErrAlreadyUsed           = errors.New("ticket already used")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrTransientUpstream     = errors.New("transient upstream failure")
)
