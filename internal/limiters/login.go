package limiters

import (
	"context"
	"errors"
	"time"

	"github.com/pagebound/authcore/internal/rate"
)

var (
	ErrLoginRateLimited = errors.New("login rate limited")
	ErrLoginUnavailable = errors.New("login limiter backend unavailable")
)

// WindowLimits caps one identity dimension over the two standard fixed
// windows.
type WindowLimits struct {
	PerMinute int
	PerHour   int
}

type LoginConfig struct {
	Email WindowLimits
	IP    WindowLimits
}

// LoginLimiter throttles login attempts per email and per client IP. All
// four rules are evaluated all-or-nothing, so a rejected attempt burns no
// quota on any of them.
type LoginLimiter struct {
	limiter *rate.Limiter
	config  LoginConfig
}

func NewLoginLimiter(limiter *rate.Limiter, cfg LoginConfig) *LoginLimiter {
	return &LoginLimiter{
		limiter: limiter,
		config:  cfg,
	}
}

func (l *LoginLimiter) Check(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	rules := []rate.Rule{
		{Key: "lg:e1m:" + email, Window: time.Minute, Limit: l.config.Email.PerMinute},
		{Key: "lg:e1h:" + email, Window: time.Hour, Limit: l.config.Email.PerHour},
	}
	if ip != "" {
		rules = append(rules,
			rate.Rule{Key: "lg:ip1m:" + ip, Window: time.Minute, Limit: l.config.IP.PerMinute},
			rate.Rule{Key: "lg:ip1h:" + ip, Window: time.Hour, Limit: l.config.IP.PerHour},
		)
	}

	return mapRateError(l.limiter.Consume(ctx, rules), ErrLoginRateLimited, ErrLoginUnavailable)
}

func mapRateError(err, limited, unavailable error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return limited
	default:
		return unavailable
	}
}
