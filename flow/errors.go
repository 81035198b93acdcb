package flow

import (
	"errors"
	"fmt"
)

// Authentication failures are indistinguishable on purpose: the same error
// comes back for an unknown email and for a wrong password.
var ErrLoginFailed = errors.New("flow: login unsuccessful")

// ErrAlreadyConfirmed rejects confirmation of an account whose email
// ownership was already proven.
var ErrAlreadyConfirmed = errors.New("flow: account already confirmed")

// ErrNotFound is returned when a flow references a user that no longer
// exists in the store.
var ErrNotFound = errors.New("flow: user not found")

// ValidationError is a form-level failure. The web layer re-renders the form
// with Message instead of failing the request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flow: validation failed on %s: %s", e.Field, e.Message)
}

// DeliveryError wraps an email send failure. Non-fatal: the state change that
// preceded the send is never rolled back.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("flow: mail delivery failed: %v", e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }
