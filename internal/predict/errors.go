package predict

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the kind of prediction failure
type ErrorType string

const (
	// ErrTypeValidation indicates no usable file was selected; never reaches the network
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeTransport indicates network failure, timeout, or an error status without a usable body
	ErrTypeTransport ErrorType = "transport"

	// ErrTypeService indicates an error status carrying a server-supplied message
	ErrTypeService ErrorType = "service"

	// ErrTypeParse indicates the response body could not be decoded
	ErrTypeParse ErrorType = "parse"
)

// User-facing messages
const (
	MsgNoFile        = "please select an image file"
	MsgServiceFailed = "failed to get a response from the prediction service"
	MsgUploadFailed  = "an error occurred while uploading the image"
)

// Error represents a failed prediction attempt
type Error struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message provides a human-readable description
	Message string `json:"message"`

	// StatusCode of the response, zero when none was received
	StatusCode int `json:"status_code,omitempty"`

	// Cause is the underlying error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("type=%s", e.Type)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same type
func (e *Error) Is(target error) bool {
	var pe *Error
	if errors.As(target, &pe) {
		return e.Type == pe.Type
	}
	return false
}

// ErrNoFile is returned when a submission is attempted without a selected file
var ErrNoFile = &Error{Type: ErrTypeValidation, Message: MsgNoFile}

// NewError creates a new prediction error
func NewError(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// NewErrorWithCause creates a prediction error with an underlying cause
func NewErrorWithCause(errType ErrorType, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// NewStatusError creates a prediction error for an HTTP response
func NewStatusError(errType ErrorType, statusCode int, message string) *Error {
	return &Error{Type: errType, Message: message, StatusCode: statusCode}
}

// ConfigurationError represents an invalid client configuration
type ConfigurationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for field '%s': %s", e.Field, e.Message)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

// TypeOf returns the error type, or "" for errors outside this package
func TypeOf(err error) ErrorType {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ""
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrTypeValidation
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool {
	return TypeOf(err) == ErrTypeTransport
}

// IsServiceError checks if an error carries a server-supplied message
func IsServiceError(err error) bool {
	return TypeOf(err) == ErrTypeService
}

// IsParseError checks if an error is a response parse error
func IsParseError(err error) bool {
	return TypeOf(err) == ErrTypeParse
}

// DisplayMessage returns the message shown to the user for a failed attempt.
// Server-supplied and validation messages are shown verbatim; transport and
// parse failures collapse to a generic message.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}

	var pe *Error
	if !errors.As(err, &pe) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return MsgUploadFailed
	}

	switch pe.Type {
	case ErrTypeValidation, ErrTypeService:
		if pe.Message != "" {
			return pe.Message
		}
	case ErrTypeTransport, ErrTypeParse:
		if pe.StatusCode > 0 {
			return MsgServiceFailed
		}
	}
	return MsgUploadFailed
}
