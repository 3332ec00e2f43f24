// Package errors re-exports the standard errors API and adds the small
// typed taxonomy the dispatcher and data model need to decide, without
// string matching, whether an error is a wire problem, a bad config, a
// resource failure or a driver failure.
package errors

import (
	stdliberrors "errors"
	"fmt"
)

var (
	As     = stdliberrors.As
	Is     = stdliberrors.Is
	Join   = stdliberrors.Join
	New    = stdliberrors.New
	Unwrap = stdliberrors.Unwrap
)

// Kind classifies an error per spec.md section 7.
type Kind int

const (
	KindWire Kind = iota
	KindConfig
	KindResource
	KindDriver
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindWire:
		return "wire"
	case KindConfig:
		return "config"
	case KindResource:
		return "resource"
	case KindDriver:
		return "driver"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// RetryableError is implemented by errors the dispatcher's send-queue
// backoff should retry (spec.md section 4.4, EAGAIN).
type RetryableError interface {
	error
	Retryable()
}

func Retryable(err error) bool {
	var r RetryableError
	return As(err, &r)
}

func NewRetryable(text string) RetryableError {
	return &retryableError{text}
}

type retryableError struct{ text string }

func (r *retryableError) Error() string { return r.text }
func (r *retryableError) Retryable()    {}

// typedError carries a Kind plus whatever context the caller wants
// logged (TLV type, message id, interface name, ...).
type typedError struct {
	kind    Kind
	context string
	err     error
}

func (e *typedError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %s", e.kind, e.context)
	}
	return fmt.Sprintf("%s: %s: %v", e.kind, e.context, e.err)
}

func (e *typedError) Unwrap() error { return e.err }

func (e *typedError) Kind() Kind { return e.kind }

// WireError wraps a codec-layer failure: truncated frame, unknown TLV
// handling, malformed TLV, fragmentation gap, reassembly timeout.
func WireError(context string, err error) error {
	return &typedError{kind: KindWire, context: context, err: err}
}

// ConfigError wraps a configuration-load or validation failure. Callers
// at process startup treat this as fatal with exit code 1.
func ConfigError(context string, err error) error {
	return &typedError{kind: KindConfig, context: context, err: err}
}

// ResourceError wraps an OS/socket/interface failure (exit code 2 during
// init; logged and the interface marked down during steady state).
func ResourceError(context string, err error) error {
	return &typedError{kind: KindResource, context: context, err: err}
}

// DriverError wraps a failure returned by the external WifiDriver trait.
func DriverError(context string, err error) error {
	return &typedError{kind: KindDriver, context: context, err: err}
}

// InternalError wraps a broken implementation invariant (spec.md
// section 7, kind 5) — never fatal, always logged and the current
// operation aborted.
func InternalError(context string, err error) error {
	return &typedError{kind: KindInternal, context: context, err: err}
}

// KindOf extracts the Kind from an error produced by this package, if
// any. Ok is false for errors that never passed through here.
func KindOf(err error) (Kind, bool) {
	var t *typedError
	if As(err, &t) {
		return t.kind, true
	}
	return 0, false
}
