// Package errors defines the typed failures shared by collection stores,
// gateways and sessions.
package errors

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies failures so callers can tell "try again" from
// "already up to date" without string matching.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindNetwork      Kind = "network"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindBusy         Kind = "busy"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindUnavailable  Kind = "unavailable"
)

// Sentinels for errors.Is comparisons. A sentinel matches any Error of the
// same kind.
var (
	ErrNetwork      = Error{Kind: KindNetwork}
	ErrNotFound     = Error{Kind: KindNotFound}
	ErrConflict     = Error{Kind: KindConflict}
	ErrBusy         = Error{Kind: KindBusy}
	ErrValidation   = Error{Kind: KindValidation}
	ErrUnauthorized = Error{Kind: KindUnauthorized}
	ErrUnavailable  = Error{Kind: KindUnavailable}
)

// Error is a typed failure with an optional localization key and cause.
type Error struct {
	Kind    Kind
	Key     string
	Message string
	Cause   error
}

// Error renders the human-readable message.
func (e Error) Error() string {
	message := e.Message
	if message == "" {
		message = string(e.Kind)
	}
	if e.Cause != nil {
		return message + ": " + e.Cause.Error()
	}
	return message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a kind sentinel matching this error.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Key == "" && t.Cause == nil && t.Kind == e.Kind
}

// E builds a typed Error.
func E(kind Kind, message string) error {
	return Error{Kind: kind, Message: message}
}

// EK builds a typed Error with a localization key.
func EK(kind Kind, key string, message string) error {
	return Error{Kind: kind, Key: strings.TrimSpace(key), Message: message}
}

// Wrap builds a typed Error around an underlying cause.
func Wrap(kind Kind, message string, cause error) error {
	return Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first typed Error in the chain, or
// KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return KindUnknown
	}
	return appErr.Kind
}

// Retryable reports whether the caller may reasonably issue the same request
// again. Nothing in this module retries automatically.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindBusy:
		return true
	default:
		return false
	}
}

// LocalizationKey returns the structured localization key when available.
func LocalizationKey(err error) string {
	if err == nil {
		return ""
	}
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return ""
	}
	return appErr.Key
}

// FromTransport classifies an error returned by an injected fetch or mutation
// function. Typed errors pass through unchanged; everything else is treated as
// a transport failure unless a gRPC status says otherwise.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	var appErr Error
	if stderrors.As(err, &appErr) {
		return err
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return Wrap(KindNetwork, "request timed out", err)
	case stderrors.Is(err, context.Canceled):
		return Wrap(KindNetwork, "request canceled", err)
	}
	if st, ok := status.FromError(err); ok {
		return fromGRPCStatus(st, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return Wrap(KindNetwork, "network failure", err)
	}
	return Wrap(KindNetwork, "transport failure", err)
}

func fromGRPCStatus(st *status.Status, cause error) error {
	message := st.Message()
	switch st.Code() {
	case codes.NotFound:
		return Wrap(KindNotFound, message, cause)
	case codes.AlreadyExists:
		return Wrap(KindConflict, message, cause)
	case codes.Aborted:
		return Wrap(KindBusy, message, cause)
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return Wrap(KindValidation, message, cause)
	case codes.Unauthenticated, codes.PermissionDenied:
		return Wrap(KindUnauthorized, message, cause)
	default:
		return Wrap(KindNetwork, message, cause)
	}
}

// FromHTTPStatus maps a non-2xx HTTP response to a typed Error.
func FromHTTPStatus(code int, key string, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = strings.ToLower(http.StatusText(code))
	}
	var kind Kind
	switch {
	case code == http.StatusNotFound:
		kind = KindNotFound
	case code == http.StatusConflict:
		kind = KindConflict
	case code == http.StatusLocked:
		kind = KindBusy
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		kind = KindValidation
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		kind = KindUnauthorized
	default:
		kind = KindNetwork
	}
	return EK(kind, key, message)
}
