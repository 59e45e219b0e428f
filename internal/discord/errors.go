package discord

import "fmt"

// ErrorCode classifies gateway failures.
type ErrorCode string

const (
	ErrCodeConfig         ErrorCode = "config"
	ErrCodeAuthentication ErrorCode = "authentication"
	ErrCodeConnection     ErrorCode = "connection"
	ErrCodeInternal       ErrorCode = "internal"
)

// GatewayError is a classified error from the Discord surface.
type GatewayError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("discord: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("discord: %s: %s", e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ErrConfig creates a configuration error.
func ErrConfig(message string, err error) *GatewayError {
	return &GatewayError{Code: ErrCodeConfig, Message: message, Err: err}
}

// ErrAuthentication creates an authentication error.
func ErrAuthentication(message string, err error) *GatewayError {
	return &GatewayError{Code: ErrCodeAuthentication, Message: message, Err: err}
}

// ErrConnection creates a connection error.
func ErrConnection(message string, err error) *GatewayError {
	return &GatewayError{Code: ErrCodeConnection, Message: message, Err: err}
}

// ErrInternal creates an internal error.
func ErrInternal(message string, err error) *GatewayError {
	return &GatewayError{Code: ErrCodeInternal, Message: message, Err: err}
}
