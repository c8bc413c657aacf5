package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Transport errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeSessionExpired ErrorType = "session_expired"

	// Remote-reported errors
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRemote     ErrorType = "remote"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeServer     ErrorType = "server"

	ErrorTypeUnknown ErrorType = "unknown"
)

// RemoteError is implemented by errors decoded from an API error body.
type RemoteError interface {
	error
	HTTPStatus() int
	// RemoteMessage is the structured "message" field, if any
	RemoteMessage() string
	// ErrorField is the structured "error" field, if any
	ErrorField() string
	// FieldErrors lists validation messages in server order
	FieldErrors() []string
	// TransportMessage describes the failed exchange without the body
	TransportMessage() string
}

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	RetryAfter int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, cause)
	err.Suggestion = "Check your internet connection and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.Suggestion = "Try logging in again with 'socialhub auth login'"
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError() *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", nil)
	err.Suggestion = "Run 'socialhub auth login' to refresh your session."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	return NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
}

// RateLimitError creates a rate limit error
func RateLimitError(retryAfter int) *CLIError {
	err := NewCLIError(ErrorTypeRateLimit, "Rate limit exceeded. Too many requests.", nil)
	err.RetryAfter = retryAfter
	err.Suggestion = fmt.Sprintf("Please wait %d seconds before trying again.", retryAfter)
	return err
}

// Describe derives the user-facing message for a failed remote call.
// Precedence: structured API message, structured API error, first
// validation error, transport error message, fallback.
func Describe(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var remote RemoteError
	if errors.As(err, &remote) {
		if msg := strings.TrimSpace(remote.RemoteMessage()); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(remote.ErrorField()); msg != "" {
			return msg
		}
		for _, msg := range remote.FieldErrors() {
			if msg = strings.TrimSpace(msg); msg != "" {
				return msg
			}
		}
		if msg := strings.TrimSpace(remote.TransportMessage()); msg != "" {
			return msg
		}
		return fallback
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Message != "" {
		return cliErr.Message
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// IsNotFound reports whether err is a remote 404
func IsNotFound(err error) bool {
	var remote RemoteError
	if errors.As(err, &remote) {
		return remote.HTTPStatus() == 404
	}
	var cliErr *CLIError
	return errors.As(err, &cliErr) && cliErr.Type == ErrorTypeNotFound
}

// IsBenign reports whether err can be treated as success for an idempotent
// follow-up call such as marking a notification read.
func IsBenign(err error) bool {
	return err == nil || IsNotFound(err)
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var remote RemoteError
	if errors.As(err, &remote) {
		return categorizeRemote(remote)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return TimeoutError(err)
		}
		return NetworkError("Could not reach the server", err)
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return NetworkError("Could not connect to server. Make sure it's running.", err)
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError(err)
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

func categorizeRemote(remote RemoteError) *CLIError {
	message := Describe(remote, "Request failed")
	status := remote.HTTPStatus()

	var out *CLIError
	switch {
	case status == 401:
		out = AuthError(message)
		out.Type = ErrorTypeUnauthorized
	case status == 403:
		out = NewCLIError(ErrorTypeForbidden, message, remote)
		out.Suggestion = "Contact an administrator if you believe this is an error."
	case status == 404:
		out = NewCLIError(ErrorTypeNotFound, message, remote)
	case status == 409:
		out = NewCLIError(ErrorTypeConflict, message, remote)
	case status == 422 || (status == 400 && len(remote.FieldErrors()) > 0):
		out = NewCLIError(ErrorTypeValidation, message, remote)
	case status == 429:
		out = RateLimitError(60)
		out.Message = message
	case status >= 500:
		out = NewCLIError(ErrorTypeServer, message, remote)
		out.Suggestion = "The server encountered an error. Try again in a few moments."
	default:
		out = NewCLIError(ErrorTypeRemote, message, remote)
	}
	out.Cause = remote
	out.StatusCode = status
	return out
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	if cliErr.Type == ErrorTypeRateLimit && cliErr.RetryAfter > 0 {
		sb.WriteString(fmt.Sprintf("Retry in: %d seconds\n", cliErr.RetryAfter))
	}

	return sb.String()
}
