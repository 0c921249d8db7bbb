package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/pagebound/authcore/internal"
	"github.com/pagebound/authcore/internal/codes"
	"github.com/pagebound/authcore/internal/limiters"
)

// StartRegistration describes the startregistration operation and its observable behavior.
//
// StartRegistration runs the pre-account registration flow: duplicate email
// check, send-rate limiting, and issuance of an email-verification code keyed
// by the normalized address. The duplicate check is deliberately enumerable
// ([ErrAccountExists] maps to a 409 payload): the registration form needs to
// tell the user to log in instead, and that product decision is made here,
// not leaked by accident.
//
// StartRegistration may return an error when input validation, dependency calls, or security checks fail.
// StartRegistration does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) StartRegistration(ctx context.Context, email, ip string) error {
	if g == nil {
		return ErrGuardNotReady
	}
	email = internal.NormalizeSubject(email)

	exists, err := g.accounts.EmailExists(ctx, email)
	if err != nil {
		g.metricInc(MetricBackendUnavailable)
		g.emitAudit(ctx, auditEventBackendUnavailable, false, email, ip, ErrEmailVerificationUnavailable, func() map[string]string {
			return map[string]string{
				"scope": "registration_duplicate_check",
			}
		})
		return ErrEmailVerificationUnavailable
	}
	if exists {
		g.metricInc(MetricRegistrationDuplicate)
		g.emitAudit(ctx, auditEventRegistrationDuplicate, false, email, ip, ErrAccountExists, nil)
		return ErrAccountExists
	}

	return g.issueVerificationCode(ctx, email, ip)
}

// ResendVerificationCode describes the resendverificationcode operation and its observable behavior.
//
// ResendVerificationCode re-issues the email-verification code for an
// existing unverified account, superseding any previously active code.
// Already-verified accounts are a no-op.
//
// ResendVerificationCode may return an error when input validation, dependency calls, or security checks fail.
// ResendVerificationCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) ResendVerificationCode(ctx context.Context, email, ip string) error {
	if g == nil {
		return ErrGuardNotReady
	}
	email = internal.NormalizeSubject(email)

	account, err := g.accounts.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		g.metricInc(MetricBackendUnavailable)
		return ErrEmailVerificationUnavailable
	}
	if account.EmailVerified {
		return nil
	}

	return g.issueVerificationCode(ctx, email, ip)
}

func (g *Guard) issueVerificationCode(ctx context.Context, email, ip string) error {
	if err := g.verificationLimiter.CheckSend(ctx, email, ip); err != nil {
		switch {
		case errors.Is(err, limiters.ErrVerificationRateLimited):
			g.metricInc(MetricVerificationRateLimited)
			g.emitRateLimit(ctx, "email_verification", email, ip)
			return ErrEmailVerificationRateLimited
		default:
			g.metricInc(MetricBackendUnavailable)
			return ErrEmailVerificationUnavailable
		}
	}

	if err := g.codes.Issue(ctx, email, email, PurposeEmailVerification); err != nil {
		switch {
		case errors.Is(err, codes.ErrDeliveryFailed):
			// The record stays persisted and valid; the client may retry the
			// send without invalidating anything.
			g.metricInc(MetricDeliveryFailure)
			g.emitAudit(ctx, auditEventDeliveryFailure, false, email, ip, ErrDeliveryFailed, func() map[string]string {
				return map[string]string{
					"purpose": string(PurposeEmailVerification),
				}
			})
			return ErrDeliveryFailed
		default:
			g.metricInc(MetricBackendUnavailable)
			return ErrEmailVerificationUnavailable
		}
	}

	g.metricInc(MetricVerificationCodeIssued)
	g.emitAudit(ctx, auditEventVerificationRequest, true, email, ip, nil, nil)
	return nil
}

// ConfirmEmailVerification describes the confirmemailverification operation and its observable behavior.
//
// ConfirmEmailVerification checks the submitted code against the active
// records for the address, consumes the match, and marks the account's email
// verified. Wrong, expired, superseded, and never-issued codes all fail with
// the same [ErrEmailVerificationInvalid].
//
// ConfirmEmailVerification may return an error when input validation, dependency calls, or security checks fail.
// ConfirmEmailVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) ConfirmEmailVerification(ctx context.Context, email, code string) error {
	if g == nil {
		return ErrGuardNotReady
	}
	email = internal.NormalizeSubject(email)

	if g.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			g.metrics.Observe(MetricVerifyLatency, time.Since(start))
		}()
	}

	record, err := g.codes.Verify(ctx, email, PurposeEmailVerification, code)
	if err != nil {
		if errors.Is(err, codes.ErrStoreUnavailable) {
			g.metricInc(MetricBackendUnavailable)
			return ErrEmailVerificationUnavailable
		}
		g.metricInc(MetricVerificationConfirmFailure)
		g.emitAudit(ctx, auditEventVerificationConfirm, false, email, "", ErrEmailVerificationInvalid, nil)
		return ErrEmailVerificationInvalid
	}

	account, err := g.accounts.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// A valid code without an account is only reachable when the
			// account was deleted mid-flow; answer like any other mismatch.
			g.metricInc(MetricVerificationConfirmFailure)
			g.emitAudit(ctx, auditEventVerificationConfirm, false, email, "", ErrEmailVerificationInvalid, nil)
			return ErrEmailVerificationInvalid
		}
		g.metricInc(MetricBackendUnavailable)
		return ErrEmailVerificationUnavailable
	}

	err = g.codes.ConsumeThen(ctx, record, func(ctx context.Context) error {
		return g.accounts.MarkEmailVerified(ctx, account.UserID)
	})
	if err != nil {
		g.metricInc(MetricBackendUnavailable)
		return ErrEmailVerificationUnavailable
	}

	g.metricInc(MetricVerificationConfirmSuccess)
	g.emitAudit(ctx, auditEventVerificationConfirm, true, email, "", nil, nil)
	return nil
}
