package authcore

import "errors"

var (
	// ErrGuardNotReady is an exported constant or variable used by the security core.
	ErrGuardNotReady = errors.New("guard not initialized")
	// ErrLoginRateLimited is an exported constant or variable used by the security core.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrLoginUnavailable is an exported constant or variable used by the security core.
	ErrLoginUnavailable = errors.New("login limiter backend unavailable")
	// ErrAccountExists is an exported constant or variable used by the security core.
	ErrAccountExists = errors.New("account already exists")
	// ErrUserNotFound is an exported constant or variable used by the security core.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailVerificationInvalid is an exported constant or variable used by the security core.
	ErrEmailVerificationInvalid = errors.New("email verification code invalid")
	// ErrEmailVerificationRateLimited is an exported constant or variable used by the security core.
	ErrEmailVerificationRateLimited = errors.New("email verification rate limited")
	// ErrEmailVerificationUnavailable is an exported constant or variable used by the security core.
	ErrEmailVerificationUnavailable = errors.New("email verification backend unavailable")
	// ErrPasswordResetInvalid is an exported constant or variable used by the security core.
	ErrPasswordResetInvalid = errors.New("password reset code invalid")
	// ErrPasswordResetRateLimited is an exported constant or variable used by the security core.
	ErrPasswordResetRateLimited = errors.New("password reset rate limited")
	// ErrPasswordResetUnavailable is an exported constant or variable used by the security core.
	ErrPasswordResetUnavailable = errors.New("password reset backend unavailable")
	// ErrDeliveryFailed is an exported constant or variable used by the security core.
	ErrDeliveryFailed = errors.New("verification email delivery failed")
	// ErrPasswordPolicy is an exported constant or variable used by the security core.
	ErrPasswordPolicy = errors.New("password policy violation")
)

// ErrorCode defines a public type used by authcore APIs.
//
// ErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ErrorCode string

const (
	// CodeTooManyLoginAttempts is an exported constant or variable used by the security core.
	CodeTooManyLoginAttempts ErrorCode = "AUTH_TOO_MANY_LOGIN_ATTEMPTS"
	// CodeEmailAlreadyExists is an exported constant or variable used by the security core.
	CodeEmailAlreadyExists ErrorCode = "AUTH_EMAIL_ALREADY_EXISTS"
	// CodeInvalidVerificationCode is an exported constant or variable used by the security core.
	CodeInvalidVerificationCode ErrorCode = "EMAIL_INVALID_VERIFICATION_CODE"
	// CodeTooManyVerificationRequests is an exported constant or variable used by the security core.
	CodeTooManyVerificationRequests ErrorCode = "EMAIL_TOO_MANY_REQUESTS"
	// CodeEmailSendFailed is an exported constant or variable used by the security core.
	CodeEmailSendFailed ErrorCode = "EMAIL_SEND_FAILED"
	// CodeInvalidResetCode is an exported constant or variable used by the security core.
	CodeInvalidResetCode ErrorCode = "PASSWORD_INVALID_RESET_CODE"
	// CodeTooManyResetRequests is an exported constant or variable used by the security core.
	CodeTooManyResetRequests ErrorCode = "PASSWORD_TOO_MANY_RESET_REQUESTS"
	// CodePasswordPolicy is an exported constant or variable used by the security core.
	CodePasswordPolicy ErrorCode = "PASSWORD_POLICY_VIOLATION"
	// CodeServiceUnavailable is an exported constant or variable used by the security core.
	CodeServiceUnavailable ErrorCode = "AUTH_SERVICE_UNAVAILABLE"
	// CodeInternalError is an exported constant or variable used by the security core.
	CodeInternalError ErrorCode = "AUTH_INTERNAL_ERROR"
)

// APIError is the transport-facing error payload. Message is safe to return
// to clients verbatim; Code is a stable machine-readable identifier.
type APIError struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
	Status  int       `json:"-"`

	cause error
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the sentinel this payload was derived from.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// AsAPIError maps a guard error to its transport payload.
//
// AsAPIError may return an error when input validation, dependency calls, or security checks fail.
// AsAPIError does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var api *APIError
	if errors.As(err, &api) {
		return api
	}

	switch {
	case errors.Is(err, ErrLoginRateLimited):
		return &APIError{
			Message: "too many login attempts, please try again later",
			Code:    CodeTooManyLoginAttempts,
			Status:  429,
			cause:   err,
		}
	case errors.Is(err, ErrAccountExists):
		return &APIError{
			Message: "an account with this email already exists",
			Code:    CodeEmailAlreadyExists,
			Status:  409,
			cause:   err,
		}
	case errors.Is(err, ErrEmailVerificationInvalid):
		return &APIError{
			Message: "invalid or expired verification code",
			Code:    CodeInvalidVerificationCode,
			Status:  400,
			cause:   err,
		}
	case errors.Is(err, ErrEmailVerificationRateLimited):
		return &APIError{
			Message: "too many verification requests, please try again later",
			Code:    CodeTooManyVerificationRequests,
			Status:  429,
			cause:   err,
		}
	case errors.Is(err, ErrPasswordResetInvalid):
		return &APIError{
			Message: "invalid or expired reset code",
			Code:    CodeInvalidResetCode,
			Status:  400,
			cause:   err,
		}
	case errors.Is(err, ErrPasswordResetRateLimited):
		return &APIError{
			Message: "too many reset requests, please try again later",
			Code:    CodeTooManyResetRequests,
			Status:  429,
			cause:   err,
		}
	case errors.Is(err, ErrDeliveryFailed):
		return &APIError{
			Message: "failed to send verification email",
			Code:    CodeEmailSendFailed,
			Status:  502,
			cause:   err,
		}
	case errors.Is(err, ErrPasswordPolicy):
		return &APIError{
			Message: "password does not meet the policy requirements",
			Code:    CodePasswordPolicy,
			Status:  400,
			cause:   err,
		}
	case errors.Is(err, ErrLoginUnavailable),
		errors.Is(err, ErrEmailVerificationUnavailable),
		errors.Is(err, ErrPasswordResetUnavailable),
		errors.Is(err, ErrGuardNotReady):
		return &APIError{
			Message: "service temporarily unavailable",
			Code:    CodeServiceUnavailable,
			Status:  503,
			cause:   err,
		}
	default:
		return &APIError{
			Message: "internal error",
			Code:    CodeInternalError,
			Status:  500,
			cause:   err,
		}
	}
}
