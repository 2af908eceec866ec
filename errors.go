package habitauth

import "errors"

// Error codes surfaced to the presentation layer
const (
	ErrCodeWeakPassword     = "weak_password"
	ErrCodePasswordMismatch = "password_mismatch"
	ErrCodeMissingField     = "missing_field"
	ErrCodeInvalidCreds     = "invalid_credentials"
	ErrCodeEmailExists      = "email_exists"
	ErrCodeServiceError     = "service_error"
	ErrCodeNetworkError     = "network_error"
	ErrCodeInFlight         = "operation_in_flight"
)

// genericRetryMessage is shown for transport and other unexpected failures
// where no service-supplied message exists.
const genericRetryMessage = "Something went wrong. Please try again."

// AuthError is a structured authentication error with a stable code, a
// user-facing message and an optional field name for form-level display.
// Messages from the external service are carried verbatim.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
}

func (e *AuthError) Error() string {
	return e.Message
}

// NewAuthError creates a new AuthError
func NewAuthError(code, message, field string) *AuthError {
	return &AuthError{Code: code, Message: message, Field: field}
}

// asAuthError normalizes any operation error into an AuthError. Errors that
// already carry a code pass through unchanged; everything else (transport
// failures, unexpected conditions) collapses into a generic retry-later error.
func asAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return NewAuthError(ErrCodeNetworkError, genericRetryMessage, "")
}
