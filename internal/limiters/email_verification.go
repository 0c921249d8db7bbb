package limiters

import (
	"context"
	"errors"
	"time"

	"github.com/pagebound/authcore/internal/rate"
)

var (
	ErrVerificationRateLimited = errors.New("verification send rate limited")
	ErrVerificationUnavailable = errors.New("verification limiter backend unavailable")
)

type EmailVerificationConfig struct {
	Email WindowLimits
	IP    WindowLimits
}

// EmailVerificationLimiter throttles verification-code sends per email and
// per client IP, bounding both mail volume and code churn for one address.
type EmailVerificationLimiter struct {
	limiter *rate.Limiter
	config  EmailVerificationConfig
}

func NewEmailVerificationLimiter(limiter *rate.Limiter, cfg EmailVerificationConfig) *EmailVerificationLimiter {
	return &EmailVerificationLimiter{
		limiter: limiter,
		config:  cfg,
	}
}

func (l *EmailVerificationLimiter) CheckSend(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	rules := []rate.Rule{
		{Key: "ev:e1m:" + email, Window: time.Minute, Limit: l.config.Email.PerMinute},
		{Key: "ev:e1h:" + email, Window: time.Hour, Limit: l.config.Email.PerHour},
	}
	if ip != "" {
		rules = append(rules,
			rate.Rule{Key: "ev:ip1m:" + ip, Window: time.Minute, Limit: l.config.IP.PerMinute},
			rate.Rule{Key: "ev:ip1h:" + ip, Window: time.Hour, Limit: l.config.IP.PerHour},
		)
	}

	return mapRateError(l.limiter.Consume(ctx, rules), ErrVerificationRateLimited, ErrVerificationUnavailable)
}
