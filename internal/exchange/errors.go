package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies a failed exchange call
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAPI
	KindTimeout
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

const (
	timeoutMessage = "request timeout - please try again"
	networkMessage = "network error - please check your connection"
	unknownMessage = "an unexpected error occurred"
)

// Error is the single error type returned by the client. Message is safe to
// show to a user; Err keeps the underlying cause.
type Error struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// apiErrorBody is the exchange's structured error payload
type apiErrorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// newAPIError builds an error from a non-2xx response
func newAPIError(status int, body []byte) *Error {
	var payload apiErrorBody
	if err := json.Unmarshal(body, &payload); err == nil && payload.Msg != "" {
		return &Error{
			Kind:    KindAPI,
			Code:    payload.Code,
			Message: fmt.Sprintf("exchange API error: %s (code: %d)", payload.Msg, payload.Code),
		}
	}

	return &Error{
		Kind:    KindAPI,
		Code:    status,
		Message: fmt.Sprintf("exchange API error: %s (code: %d)", http.StatusText(status), status),
	}
}

// normalizeError maps any failure of a request into *Error
func normalizeError(err error) *Error {
	if err == nil {
		return nil
	}

	var exErr *Error
	if errors.As(err, &exErr) {
		return exErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: timeoutMessage, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: timeoutMessage, Err: err}
		}
		return &Error{Kind: KindNetwork, Message: networkMessage, Err: err}
	}

	return &Error{Kind: KindUnknown, Message: unknownMessage, Err: err}
}

// IsKind reports whether err is an exchange error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var exErr *Error
	if errors.As(err, &exErr) {
		return exErr.Kind == kind
	}
	return false
}

// Message returns the display message for any error
func Message(err error) string {
	if err == nil {
		return ""
	}
	var exErr *Error
	if errors.As(err, &exErr) {
		return exErr.Message
	}
	return err.Error()
}
