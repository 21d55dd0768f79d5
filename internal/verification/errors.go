package verification

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when a phone number has exhausted its code
// issuance quota for the current window.
var ErrRateLimited = errors.New("too many codes requested")

// ErrDispatchFailed is returned when the messaging provider could not
// deliver the code. The rate-limit slot stays consumed.
var ErrDispatchFailed = errors.New("code dispatch failed")

// ErrNoCode is returned when no outstanding code exists for the phone number.
var ErrNoCode = errors.New("no outstanding code")

// ErrCodeExpired is returned when the outstanding code's TTL has passed.
var ErrCodeExpired = errors.New("code expired")

// ErrTooManyAttempts is returned once the attempt limit for a code is reached.
var ErrTooManyAttempts = errors.New("too many failed attempts")

// MismatchError is returned when the submitted code does not match the
// outstanding one. Remaining is the number of attempts left before the
// code is invalidated.
type MismatchError struct {
	Remaining int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("code mismatch: %d attempts remaining", e.Remaining)
}
