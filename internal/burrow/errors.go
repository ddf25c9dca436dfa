package burrow

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorKind buckets every failure the client can surface. The engine keys
// its suppression and display decisions off the kind, never off raw error
// strings.
type ErrorKind string

const (
	KindConnection ErrorKind = "connection"
	KindAuth       ErrorKind = "auth"
	KindNotFound   ErrorKind = "not-found"
	KindInvalid    ErrorKind = "invalid"
	KindInternal   ErrorKind = "internal"
)

// APIError is the normalized form of any failure from the daemon or the
// transport underneath it.
type APIError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// ErrNoCredentials is returned by DialEvents when the config carries no
// credentials for the push channel.
var ErrNoCredentials = &APIError{
	Kind:    KindAuth,
	Code:    "no_credentials",
	Message: "push channel credentials not configured",
}

// Classify normalizes an arbitrary error into an *APIError. Errors that are
// already classified pass through unchanged.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindConnection, Code: "timeout", Message: "server not responding"}
	}
	var netErr net.Error
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{Kind: KindConnection, Code: "unreachable", Message: "server not running"}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &APIError{Kind: KindConnection, Code: "unreachable", Message: "server not running"}
	}
	return &APIError{Kind: KindInternal, Message: err.Error()}
}

// IsConnectionError reports whether err normalizes to the connection kind.
// These are the failures that are expected while the daemon is deliberately
// stopped and that background polling therefore suppresses.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Kind == KindConnection
}

// statusError maps an HTTP response to an *APIError using the daemon's
// error body when it provides one.
func statusError(status int, body errorBody) *APIError {
	msg := strings.TrimSpace(body.Error)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if msg == "" {
			msg = "authentication failed"
		}
		return &APIError{Kind: KindAuth, Code: body.Code, Message: msg}
	case status == http.StatusNotFound:
		if msg == "" {
			msg = "not found"
		}
		return &APIError{Kind: KindNotFound, Code: body.Code, Message: msg}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "invalid request"
		}
		return &APIError{Kind: KindInvalid, Code: body.Code, Message: msg}
	case status == http.StatusServiceUnavailable:
		if msg == "" {
			msg = "server not running"
		}
		return &APIError{Kind: KindConnection, Code: body.Code, Message: msg}
	default:
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", status)
		}
		return &APIError{Kind: KindInternal, Code: body.Code, Message: msg}
	}
}

// errorBody is the daemon's JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
