package core

import (
	"errors"
	"fmt"
)

// Error represents a session-level error.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors per the session failure taxonomy.
type ErrorType string

const (
	// ErrDevice covers camera/microphone denial or unavailability.
	ErrDevice ErrorType = "device_error"
	// ErrConnect covers transport connect/auth failures.
	ErrConnect ErrorType = "connect_error"
	// ErrTransport covers mid-session transport failures.
	ErrTransport ErrorType = "transport_error"
	// ErrProtocol covers malformed frames from the remote endpoint.
	ErrProtocol ErrorType = "protocol_error"
	// ErrInvalid covers bad local configuration or arguments.
	ErrInvalid ErrorType = "invalid_error"
)

// NewDeviceError creates a device acquisition error.
func NewDeviceError(message string, cause error) *Error {
	return &Error{Type: ErrDevice, Message: message, Cause: cause}
}

// NewConnectError creates a transport connect error.
func NewConnectError(message string, cause error) *Error {
	return &Error{Type: ErrConnect, Message: message, Cause: cause}
}

// NewTransportError creates a mid-session transport error.
func NewTransportError(message string, cause error) *Error {
	return &Error{Type: ErrTransport, Message: message, Cause: cause}
}

// NewProtocolError creates a protocol decode error.
func NewProtocolError(message string, cause error) *Error {
	return &Error{Type: ErrProtocol, Message: message, Cause: cause}
}

// NewInvalidError creates an invalid configuration/argument error.
func NewInvalidError(message string) *Error {
	return &Error{Type: ErrInvalid, Message: message}
}

// IsFatal reports whether the error terminates the current session attempt.
// Device, connect, and runtime transport errors are terminal per-session;
// protocol decode errors are absorbed (the offending frame is dropped).
func (e *Error) IsFatal() bool {
	switch e.Type {
	case ErrDevice, ErrConnect, ErrTransport:
		return true
	default:
		return false
	}
}

// UserMessage returns the plain-language message surfaced to the user.
// Technical detail stays in Error()/logs.
func (e *Error) UserMessage() string {
	switch e.Type {
	case ErrDevice:
		return "I need to see and hear to help you."
	case ErrConnect, ErrTransport:
		return "Check connection..."
	default:
		return e.Message
	}
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns the plain-language message for any error chain.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return "Check connection..."
}

// TypeOf extracts the ErrorType from an error chain, or "" if none.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}
