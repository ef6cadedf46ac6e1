package ledger

import "errors"

// Error kinds returned by ledger operations. Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	ErrValidation = errors.New("validation error")
	ErrDuplicate  = errors.New("duplicate")
	ErrNotFound   = errors.New("not found")
	ErrEmptyCart  = errors.New("cart is empty")
)
