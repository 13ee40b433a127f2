package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Cause tags why a ledger write failed.
type Cause string

const (
	CauseNetwork           Cause = "NetworkError"
	CauseReverted          Cause = "Reverted"
	CauseInsufficientFunds Cause = "InsufficientFunds"
	CauseTimeout           Cause = "Timeout"
)

// RemoteError is the single failure outcome of a ledger submission. The
// gateway never reports partial success: either the transaction was mined
// successfully, or the whole attempt collapses into one of these.
type RemoteError struct {
	Cause Cause
	Op    string // contract method that failed
	Err   error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("ledger %s: %s: %v", e.Op, e.Cause, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// AsRemoteError extracts a *RemoteError from err, if present.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func remoteErr(op string, err error) *RemoteError {
	return &RemoteError{Cause: classify(err), Op: op, Err: err}
}

// classify folds the zoo of client/node errors into the four causes the
// reconciliation layer distinguishes.
func classify(err error) Cause {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CauseTimeout
	case errors.Is(err, errTxNotMined):
		return CauseTimeout
	case containsAny(err, "insufficient funds", "insufficient balance"):
		return CauseInsufficientFunds
	case containsAny(err, "execution reverted", "revert", "always failing transaction"):
		return CauseReverted
	default:
		return CauseNetwork
	}
}

func containsAny(err error, needles ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}

var errTxNotMined = errors.New("transaction not mined before deadline")
