// Package service holds the commerce engine: cart, voucher, loyalty, order
// materialization and the order lifecycle. Every operation takes the caller
// identity explicitly; nothing reads ambient session state.
package service

import "errors"

var (
	ErrValidation          = errors.New("validation")           // 400
	ErrNotFound            = errors.New("not found")            // 404
	ErrEmptyCart           = errors.New("empty cart")           // 400
	ErrInvalidTransition   = errors.New("invalid transition")   // 409
	ErrInsufficientBalance = errors.New("insufficient balance") // 409
	ErrPersistence         = errors.New("persistence")          // 503, safe to retry
)

// isSentinel reports whether err already carries one of the sentinels
// above, so transaction plumbing knows not to rewrap it as ErrPersistence.
func isSentinel(err error) bool {
	for _, sentinel := range []error{
		ErrValidation, ErrNotFound, ErrEmptyCart,
		ErrInvalidTransition, ErrInsufficientBalance, ErrPersistence,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
