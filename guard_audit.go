package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventLoginRateLimited      = "login_rate_limited"
	auditEventRegistrationDuplicate = "registration_duplicate"
	auditEventVerificationRequest   = "email_verification_request"
	auditEventVerificationConfirm   = "email_verification_confirm"
	auditEventPasswordResetRequest  = "password_reset_request"
	auditEventPasswordResetConfirm  = "password_reset_confirm"
	auditEventDeliveryFailure       = "delivery_failure"
	auditEventRateLimitTriggered    = "rate_limit_triggered"
	auditEventBackendUnavailable    = "backend_unavailable"
)

// AuditErrorCode defines a public type used by authcore APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrRateLimited    AuditErrorCode = "rate_limited"
	auditErrDuplicate      AuditErrorCode = "duplicate"
	auditErrInvalidCode    AuditErrorCode = "invalid_code"
	auditErrUserNotFound   AuditErrorCode = "user_not_found"
	auditErrDeliveryFailed AuditErrorCode = "delivery_failed"
	auditErrPasswordPolicy AuditErrorCode = "password_policy"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (g *Guard) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject string,
	ip string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if g == nil || g.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Subject:   subject,
		IP:        ip,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	g.audit.Emit(ctx, event)
}

func (g *Guard) emitRateLimit(ctx context.Context, scope, subject, ip string) {
	g.metricInc(MetricRateLimitHit)
	g.emitAudit(ctx, auditEventRateLimitTriggered, false, subject, ip, nil, func() map[string]string {
		return map[string]string{
			"scope": scope,
		}
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrLoginRateLimited),
		errors.Is(err, ErrEmailVerificationRateLimited),
		errors.Is(err, ErrPasswordResetRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrAccountExists):
		return auditErrDuplicate
	case errors.Is(err, ErrEmailVerificationInvalid),
		errors.Is(err, ErrPasswordResetInvalid):
		return auditErrInvalidCode
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrDeliveryFailed):
		return auditErrDeliveryFailed
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrLoginUnavailable),
		errors.Is(err, ErrEmailVerificationUnavailable),
		errors.Is(err, ErrPasswordResetUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
