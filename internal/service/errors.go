package service

import (
	"errors"
	"fmt"
	"time"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/pkg/validator"
)

// The first four error kinds abort an operation before any durable write.
// Remote ledger failures are never part of this taxonomy: they are recovered
// into a reconciliation marker and the operation still succeeds.

// ValidationError rejects malformed input before any write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// validationError converts the first field failure reported by the struct
// validator into a ValidationError.
func validationError(errs []*validator.ErrorResponse) *ValidationError {
	first := errs[0]
	return NewValidationError("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}

// NotFoundError signals that a referenced record is absent.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id %s", e.Resource, e.ID)
}

// AuthorizationError signals that the acting user lacks the required role or
// ownership.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func NewAuthorizationError(format string, args ...interface{}) *AuthorizationError {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError rejects an illegal payment state-machine move,
// naming the current and requested states.
type InvalidTransitionError struct {
	From model.PaymentStatus
	To   model.PaymentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid payment transition from %s to %s", e.From, e.To)
}

// EscrowNotReleasableError rejects an escrow release requested before the
// time lock elapses. The remote call is never attempted in this case.
type EscrowNotReleasableError struct {
	ReleaseTime time.Time
}

func (e *EscrowNotReleasableError) Error() string {
	return fmt.Sprintf("escrow not releasable before %s", e.ReleaseTime.Format(time.RFC3339))
}

// IsClientError reports whether err belongs to the pre-write taxonomy, i.e.
// the caller's request was rejected and nothing was persisted.
func IsClientError(err error) bool {
	var (
		ve *ValidationError
		nf *NotFoundError
		ae *AuthorizationError
		it *InvalidTransitionError
		er *EscrowNotReleasableError
	)
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ae) ||
		errors.As(err, &it) || errors.As(err, &er)
}
