package limiters

import (
	"context"
	"errors"
	"time"

	"github.com/pagebound/authcore/internal/rate"
)

var (
	ErrResetRateLimited = errors.New("password reset rate limited")
	ErrResetUnavailable = errors.New("password reset limiter backend unavailable")
)

type PasswordResetConfig struct {
	Email WindowLimits
	IP    WindowLimits
}

// PasswordResetLimiter throttles reset requests per email and per client IP.
//
// The email dimension is keyed by the requested address rather than the
// resolved user id: throttling must apply identically whether or not the
// account exists, or the limiter itself would leak account existence.
type PasswordResetLimiter struct {
	limiter *rate.Limiter
	config  PasswordResetConfig
}

func NewPasswordResetLimiter(limiter *rate.Limiter, cfg PasswordResetConfig) *PasswordResetLimiter {
	return &PasswordResetLimiter{
		limiter: limiter,
		config:  cfg,
	}
}

func (l *PasswordResetLimiter) CheckRequest(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	rules := []rate.Rule{
		{Key: "pr:e1m:" + email, Window: time.Minute, Limit: l.config.Email.PerMinute},
		{Key: "pr:e1h:" + email, Window: time.Hour, Limit: l.config.Email.PerHour},
	}
	if ip != "" {
		rules = append(rules,
			rate.Rule{Key: "pr:ip1m:" + ip, Window: time.Minute, Limit: l.config.IP.PerMinute},
			rate.Rule{Key: "pr:ip1h:" + ip, Window: time.Hour, Limit: l.config.IP.PerHour},
		)
	}

	return mapRateError(l.limiter.Consume(ctx, rules), ErrResetRateLimited, ErrResetUnavailable)
}
