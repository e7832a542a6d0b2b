package service

import "errors"

// Checkout preconditions and state-machine rejections. Handlers translate
// these to 400/403/409; store.ErrNotFound covers the 404 cases.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMissingPrescriber = errors.New("doctor name is required for prescription medicines")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrAccessDenied      = errors.New("access denied")
)
