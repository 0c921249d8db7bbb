package authcore

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/pagebound/authcore/internal"
	"github.com/pagebound/authcore/internal/codes"
	"github.com/pagebound/authcore/internal/limiters"
)

const minPasswordLength = 8

// RequestPasswordReset describes the requestpasswordreset operation and its observable behavior.
//
// RequestPasswordReset issues a reset code for the account behind the given
// address. Unlike registration, this flow never reveals whether the address
// has an account: unknown addresses burn the same hashing work, wait a
// jittered delay in place of mail dispatch, and return the same nil result.
// Known accounts get a code keyed by user id, superseding any active one.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) RequestPasswordReset(ctx context.Context, email, ip string) error {
	if g == nil {
		return ErrGuardNotReady
	}
	email = internal.NormalizeSubject(email)

	// Throttling keys on the requested address, not the resolved user id, so
	// the limiter behaves identically for known and unknown accounts.
	if err := g.resetLimiter.CheckRequest(ctx, email, ip); err != nil {
		switch {
		case errors.Is(err, limiters.ErrResetRateLimited):
			g.metricInc(MetricPasswordResetRateLimited)
			g.emitRateLimit(ctx, "password_reset", email, ip)
			return ErrPasswordResetRateLimited
		default:
			g.metricInc(MetricBackendUnavailable)
			return ErrPasswordResetUnavailable
		}
	}

	account, err := g.accounts.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.burnIssueWork()
			if delayErr := sleepEnumerationDelay(ctx); delayErr != nil {
				return delayErr
			}
			g.metricInc(MetricPasswordResetRequest)
			g.emitAudit(ctx, auditEventPasswordResetRequest, true, email, ip, nil, func() map[string]string {
				return map[string]string{
					"known_account": "false",
				}
			})
			return nil
		}
		g.metricInc(MetricBackendUnavailable)
		return ErrPasswordResetUnavailable
	}

	if err := g.codes.Issue(ctx, account.UserID, email, PurposePasswordReset); err != nil {
		switch {
		case errors.Is(err, codes.ErrDeliveryFailed):
			g.metricInc(MetricDeliveryFailure)
			g.emitAudit(ctx, auditEventDeliveryFailure, false, email, ip, ErrDeliveryFailed, func() map[string]string {
				return map[string]string{
					"purpose": string(PurposePasswordReset),
				}
			})
			return ErrDeliveryFailed
		default:
			g.metricInc(MetricBackendUnavailable)
			return ErrPasswordResetUnavailable
		}
	}

	g.metricInc(MetricPasswordResetRequest)
	g.emitAudit(ctx, auditEventPasswordResetRequest, true, email, ip, nil, nil)
	return nil
}

// ResetPasswordWithCode describes the resetpasswordwithcode operation and its observable behavior.
//
// ResetPasswordWithCode verifies the reset code for the account behind the
// address and commits the new password hash. The code is marked used before
// the hash update commits, both under the subject lock: an interruption can
// cost the user a re-request but can never leave a usable code behind a
// completed password change. Unknown addresses and wrong codes fail with the
// same [ErrPasswordResetInvalid] after equivalent hashing work.
//
// ResetPasswordWithCode may return an error when input validation, dependency calls, or security checks fail.
// ResetPasswordWithCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) ResetPasswordWithCode(ctx context.Context, email, code, newPassword string) error {
	if g == nil {
		return ErrGuardNotReady
	}
	email = internal.NormalizeSubject(email)

	if len(newPassword) < minPasswordLength {
		return ErrPasswordPolicy
	}

	if g.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			g.metrics.Observe(MetricVerifyLatency, time.Since(start))
		}()
	}

	account, err := g.accounts.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.burnVerifyWork(code)
			g.metricInc(MetricPasswordResetConfirmFailure)
			g.emitAudit(ctx, auditEventPasswordResetConfirm, false, email, "", ErrPasswordResetInvalid, nil)
			return ErrPasswordResetInvalid
		}
		g.metricInc(MetricBackendUnavailable)
		return ErrPasswordResetUnavailable
	}

	record, err := g.codes.Verify(ctx, account.UserID, PurposePasswordReset, code)
	if err != nil {
		if errors.Is(err, codes.ErrStoreUnavailable) {
			g.metricInc(MetricBackendUnavailable)
			return ErrPasswordResetUnavailable
		}
		g.metricInc(MetricPasswordResetConfirmFailure)
		g.emitAudit(ctx, auditEventPasswordResetConfirm, false, email, "", ErrPasswordResetInvalid, nil)
		return ErrPasswordResetInvalid
	}

	newHash, err := g.hasher.Hash(newPassword)
	if err != nil {
		return ErrPasswordPolicy
	}

	err = g.codes.ConsumeThen(ctx, record, func(ctx context.Context) error {
		return g.accounts.UpdatePasswordHash(ctx, account.UserID, newHash)
	})
	if err != nil {
		g.metricInc(MetricBackendUnavailable)
		return ErrPasswordResetUnavailable
	}

	g.metricInc(MetricPasswordResetConfirmSuccess)
	g.emitAudit(ctx, auditEventPasswordResetConfirm, true, email, "", nil, nil)
	return nil
}

// burnIssueWork performs the hashing an Issue would have done, so the
// unknown-account request path costs as much CPU as the known-account path.
func (g *Guard) burnIssueWork() {
	plaintext, err := internal.NewCode(g.config.Codes.PasswordReset.Length, internal.CharsetAlphanumeric)
	if err != nil {
		return
	}
	_, _ = g.codeHasher.Hash(plaintext)
}

// burnVerifyWork performs one hash comparison against a build-time throwaway
// hash, matching the cost of a single-record verify scan.
func (g *Guard) burnVerifyWork(code string) {
	if code == "" {
		code = "-"
	}
	_, _ = g.codeHasher.Verify(code, g.burnHash)
}

// sleepEnumerationDelay stands in for the latency of mail dispatch on the
// unknown-account path. The jitter window is deliberately small; it masks
// the skipped send, not the Argon2 work (which is burned separately).
func sleepEnumerationDelay(ctx context.Context) error {
	minMs := int64(20)
	maxMs := int64(40)
	span := maxMs - minMs + 1

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return err
	}

	delay := time.Duration(minMs+n.Int64()) * time.Millisecond
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
