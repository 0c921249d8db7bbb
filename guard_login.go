package authcore

import (
	"context"
	"errors"

	"github.com/pagebound/authcore/internal"
	"github.com/pagebound/authcore/internal/limiters"
)

// AllowLogin describes the allowlogin operation and its observable behavior.
//
// AllowLogin consumes one attempt from every login rule (per-email minute and
// hour windows, plus per-IP windows when ip is non-empty) if and only if all
// of them have headroom. A rejected call consumes nothing, so a throttled
// client cannot extend its own lockout by retrying.
//
// AllowLogin may return an error when input validation, dependency calls, or security checks fail.
// AllowLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) AllowLogin(ctx context.Context, email, ip string) error {
	if g == nil {
		return ErrGuardNotReady
	}
	email = internal.NormalizeSubject(email)

	if err := g.loginLimiter.Check(ctx, email, ip); err != nil {
		switch {
		case errors.Is(err, limiters.ErrLoginRateLimited):
			g.metricInc(MetricLoginRateLimited)
			g.emitAudit(ctx, auditEventLoginRateLimited, false, email, ip, ErrLoginRateLimited, nil)
			g.emitRateLimit(ctx, "login", email, ip)
			return ErrLoginRateLimited
		default:
			g.metricInc(MetricBackendUnavailable)
			g.emitAudit(ctx, auditEventBackendUnavailable, false, email, ip, ErrLoginUnavailable, func() map[string]string {
				return map[string]string{
					"scope": "login",
				}
			})
			return ErrLoginUnavailable
		}
	}

	g.metricInc(MetricLoginAllowed)
	return nil
}
