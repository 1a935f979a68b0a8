package storefront

import (
	"errors"
	"fmt"
)

// ErrStopped is returned when an event is submitted after Stop.
var ErrStopped = errors.New("controller stopped")

// ErrorCode categorizes controller errors.
type ErrorCode string

const (
	// ErrCodeNetwork marks a fetch that failed or returned a non-2xx status.
	ErrCodeNetwork ErrorCode = "NETWORK_FAILURE"

	// ErrCodeStale marks a response discarded because a newer query was issued.
	ErrCodeStale ErrorCode = "STALE_RESPONSE"

	// ErrCodePrecondition marks a cart operation on a line that does not exist.
	ErrCodePrecondition ErrorCode = "PRECONDITION"

	// ErrCodeMalformedFragment marks a filter change that would corrupt the query.
	ErrCodeMalformedFragment ErrorCode = "MALFORMED_FRAGMENT"

	// ErrCodeInvalidUpdate marks a rejected canonical state write.
	ErrCodeInvalidUpdate ErrorCode = "INVALID_UPDATE"

	// ErrCodeInvalidInput marks a gesture naming an unknown widget or option.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error is a controller error with a category code.
type Error struct {
	Code    ErrorCode
	Message string

	// Seq is the query sequence number, when the error concerns a query.
	Seq int64
	// Query is the encoded query string, when known.
	Query string

	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Seq != 0 {
		msg = fmt.Sprintf("%s (seq=%d)", msg, e.Seq)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNetworkError reports whether err is a failed fetch.
func IsNetworkError(err error) bool { return hasCode(err, ErrCodeNetwork) }

// IsStaleError reports whether err is a discarded stale response.
func IsStaleError(err error) bool { return hasCode(err, ErrCodeStale) }

// IsPreconditionError reports whether err is a cart precondition failure.
func IsPreconditionError(err error) bool { return hasCode(err, ErrCodePrecondition) }

func newNetworkError(seq int64, query string, err error) *Error {
	return &Error{Code: ErrCodeNetwork, Message: "product query failed", Seq: seq, Query: query, Err: err}
}

func newStaleError(seq, latest int64) *Error {
	return &Error{Code: ErrCodeStale, Message: fmt.Sprintf("response superseded by seq %d", latest), Seq: seq}
}
