// Package common provides shared error kinds, logging and retry utilities.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds the capture workflow produces. Every failure the workflow
// surfaces wraps exactly one of these, so callers can branch with errors.Is
// and map to user-facing text with UserMessage.
var (
	// ErrValidation marks bad, missing or out-of-range input fields as well
	// as file type/size rejections. Recoverable by correcting the input.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedOutput marks AI output that was not JSON or failed
	// receipt validation. Distinct from ErrServiceUnavailable because
	// retrying the same action usually resolves it.
	ErrMalformedOutput = errors.New("malformed extraction output")

	// ErrServiceUnavailable marks AI or storage backend failures,
	// including transport errors.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrOperationCancelled marks a gateway call aborted by cancellation.
	// User-facing behavior matches ErrServiceUnavailable; telemetry keeps
	// them apart.
	ErrOperationCancelled = errors.New("operation cancelled")

	// ErrStaleAction marks an approve/reject whose token no longer matches
	// the staged candidate. Terminal: the user must act on the latest preview.
	ErrStaleAction = errors.New("stale action")

	// ErrNoPendingCapture marks an action arriving with nothing staged.
	ErrNoPendingCapture = errors.New("no pending capture")

	// ErrNotFound marks a missing persisted record.
	ErrNotFound = errors.New("not found")
)

// UserError carries a message that is safe to show to the user alongside the
// wrapped internal error.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error with an explicit user-facing message.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// Validationf builds a validation error with a user-presentable detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MalformedOutputf builds a malformed-output error with internal detail.
func MalformedOutputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedOutput, fmt.Sprintf(format, args...))
}

// ServiceFailure wraps a backend error, mapping context cancellation to its
// own kind so it stays visible in telemetry.
func ServiceFailure(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrOperationCancelled, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrServiceUnavailable, op, err)
}

// UserMessage converts any workflow error into text safe to show the user.
// Internal detail (paths, tokens, backend responses) never appears here.
func UserMessage(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.UserMessage
	}

	switch {
	case errors.Is(err, ErrStaleAction):
		return "This button is no longer active. Please use the latest preview."
	case errors.Is(err, ErrNoPendingCapture):
		return "There is nothing waiting for confirmation right now. Send a receipt first."
	case errors.Is(err, ErrMalformedOutput):
		return "I couldn't make sense of the extraction result. Retrying the same action usually resolves this."
	case errors.Is(err, ErrValidation):
		return "That input didn't pass validation. Please correct it and try again."
	case errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrOperationCancelled):
		return "Something went wrong on my side. Please try again in a moment."
	case errors.Is(err, ErrNotFound):
		return "I couldn't find that record."
	default:
		return "Something unexpected went wrong. Please try again."
	}
}

// IsRetryable reports whether an operation that failed with err is worth
// retrying automatically.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrOperationCancelled) {
		return false
	}
	return errors.Is(err, ErrServiceUnavailable)
}
