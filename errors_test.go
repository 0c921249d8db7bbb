package authcore

import (
	"errors"
	"fmt"
	"testing"
)

func TestAsAPIErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   ErrorCode
		status int
	}{
		{ErrLoginRateLimited, CodeTooManyLoginAttempts, 429},
		{ErrAccountExists, CodeEmailAlreadyExists, 409},
		{ErrEmailVerificationInvalid, CodeInvalidVerificationCode, 400},
		{ErrEmailVerificationRateLimited, CodeTooManyVerificationRequests, 429},
		{ErrPasswordResetInvalid, CodeInvalidResetCode, 400},
		{ErrPasswordResetRateLimited, CodeTooManyResetRequests, 429},
		{ErrDeliveryFailed, CodeEmailSendFailed, 502},
		{ErrPasswordPolicy, CodePasswordPolicy, 400},
		{ErrLoginUnavailable, CodeServiceUnavailable, 503},
		{ErrEmailVerificationUnavailable, CodeServiceUnavailable, 503},
		{ErrPasswordResetUnavailable, CodeServiceUnavailable, 503},
		{ErrGuardNotReady, CodeServiceUnavailable, 503},
		{errors.New("disk on fire"), CodeInternalError, 500},
	}

	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			api := AsAPIError(tc.err)
			if api == nil {
				t.Fatal("nil payload")
			}
			if api.Code != tc.code || api.Status != tc.status {
				t.Fatalf("got code=%s status=%d, want code=%s status=%d", api.Code, api.Status, tc.code, tc.status)
			}
			if api.Message == "" {
				t.Fatal("empty message")
			}
		})
	}
}

func TestAsAPIErrorWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrLoginRateLimited)
	api := AsAPIError(wrapped)
	if api.Code != CodeTooManyLoginAttempts {
		t.Fatalf("wrapped sentinel mapped to %s", api.Code)
	}
	if !errors.Is(api, ErrLoginRateLimited) {
		t.Fatal("payload must unwrap to the sentinel")
	}
}

func TestAsAPIErrorNil(t *testing.T) {
	if api := AsAPIError(nil); api != nil {
		t.Fatalf("expected nil, got %+v", api)
	}
}

func TestAsAPIErrorPassthrough(t *testing.T) {
	original := &APIError{Message: "custom", Code: CodeInternalError, Status: 500}
	if got := AsAPIError(original); got != original {
		t.Fatalf("existing payload must pass through, got %+v", got)
	}
}
