package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies an engine failure so callers can distinguish
// "fix your credentials" from "try again later" from "not enough data yet".
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindUnauthenticated means credentials are missing, expired or invalid.
	KindUnauthenticated
	// KindUnauthorized means the credentials lack permission for a query.
	KindUnauthorized
	// KindInvalidWindow means the requested time window is malformed.
	KindInvalidWindow
	// KindUpstreamUnavailable is a transient upstream fault; retryable.
	KindUpstreamUnavailable
	// KindInsufficientHistory means too few observed days to forecast.
	KindInsufficientHistory
	// KindPartialData means one data source failed while others succeeded.
	KindPartialData
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidWindow:
		return "invalid_window"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindInsufficientHistory:
		return "insufficient_history"
	case KindPartialData:
		return "partial_data_unavailable"
	}
	return "unknown"
}

// Error is the engine's error type. Op names the operation that failed,
// Sections names the report sections affected by a partial-data failure.
type Error struct {
	Kind     ErrorKind
	Op       string
	Sections []string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if len(e.Sections) > 0 {
		fmt.Fprintf(&b, " (sections: %s)", strings.Join(e.Sections, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and operation name.
func E(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error from a format string.
func Errorf(kind ErrorKind, op, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, a...)}
}

// KindOf extracts the ErrorKind from err, or KindUnknown when err carries
// no classification.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a transient fault worth retrying.
// Caller errors (auth, invalid window) are never retried.
func IsRetryable(err error) bool {
	return KindOf(err) == KindUpstreamUnavailable
}
