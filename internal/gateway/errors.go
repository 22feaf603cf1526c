// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"errors"
	"net"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the gateway client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel ClientErrors by type, so errors.Is(err, ErrTimeout)
// holds for any timeout regardless of message or cause.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Cause == nil
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnavailable
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeNotFound
	ErrTypeInvalidPersona
	ErrTypeInvalidResponse
)

// String returns a short label, also used as a metrics outcome.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeUnavailable:
		return "unavailable"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeUnauthorized:
		return "unauthorized"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeInvalidPersona:
		return "invalid_persona"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrUnavailable     = &ClientError{Type: ErrTypeUnavailable, Message: "agent gateway unavailable"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized    = &ClientError{Type: ErrTypeUnauthorized, Message: "not authorized"}
	ErrNotFound        = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
	ErrInvalidPersona  = &ClientError{Type: ErrTypeInvalidPersona, Message: "invalid agent type"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response from gateway"}
)

// TypeOf returns the ErrorType carried by err, or ErrTypeUnknown.
func TypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// IsTimeout reports whether err is a gateway timeout.
func IsTimeout(err error) bool {
	return TypeOf(err) == ErrTypeTimeout
}

// IsUnauthorized reports whether the gateway rejected the credentials.
func IsUnauthorized(err error) bool {
	return TypeOf(err) == ErrTypeUnauthorized
}

// IsInvalidPersona reports whether the backend refused a persona switch.
func IsInvalidPersona(err error) bool {
	return TypeOf(err) == ErrTypeInvalidPersona
}

// transportError classifies an error returned before any HTTP status was
// seen.
func transportError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: op + " timed out", Cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: op + " timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeUnavailable, Message: op + " failed", Cause: err}
}

// statusError classifies a non-2xx response.
func statusError(op string, status int, body string) error {
	ce := &ClientError{Type: ErrTypeUnavailable, Message: op + " failed", StatusCode: status}
	switch {
	case status == 401 || status == 403:
		ce.Type = ErrTypeUnauthorized
	case status == 404:
		ce.Type = ErrTypeNotFound
	case status == 408 || status == 504:
		ce.Type = ErrTypeTimeout
	}
	if detail := errorDetail(body); detail != "" {
		ce.Message += ": " + detail
	}
	return ce
}
