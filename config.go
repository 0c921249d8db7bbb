package authcore

import (
	"errors"
	"time"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Codes     CodesConfig     `yaml:"codes"`
	Password  PasswordConfig  `yaml:"password"`
	Audit     AuditConfig     `yaml:"audit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// WindowLimits defines a public type used by authcore APIs.
//
// WindowLimits instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type WindowLimits struct {
	PerMinute int `yaml:"per_minute"`
	PerHour   int `yaml:"per_hour"`
}

// FlowLimits defines a public type used by authcore APIs.
//
// FlowLimits instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FlowLimits struct {
	Email WindowLimits `yaml:"email"`
	IP    WindowLimits `yaml:"ip"`
}

// RateLimitConfig defines a public type used by authcore APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Login             FlowLimits `yaml:"login"`
	EmailVerification FlowLimits `yaml:"email_verification"`
	PasswordReset     FlowLimits `yaml:"password_reset"`
}

/*
====================================
VERIFICATION CODE CONFIG
====================================
*/

// CodeConfig defines a public type used by authcore APIs.
//
// CodeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CodeConfig struct {
	Length int           `yaml:"length"`
	TTL    time.Duration `yaml:"-"`
}

// CodesConfig defines a public type used by authcore APIs.
//
// CodesConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CodesConfig struct {
	// NodeID distinguishes record-id generators across processes sharing a
	// code store. Must be unique per process, 0..1023.
	NodeID            int64      `yaml:"node_id"`
	EmailVerification CodeConfig `yaml:"email_verification"`
	PasswordReset     CodeConfig `yaml:"password_reset"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authcore APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 `yaml:"memory"` // in KB
	Time        uint32 `yaml:"time"`
	Parallelism uint8  `yaml:"parallelism"`
	SaltLength  uint32 `yaml:"salt_length"`
	KeyLength   uint32 `yaml:"key_length"`
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the documented default configuration: login throttled
// at 5/min and 20/hr per email plus 20/min and 100/hr per IP, 8-character
// alphanumeric codes with a 10 minute TTL, and password-grade Argon2id costs.
//
// DefaultConfig does not mutate shared global state and can be used concurrently.
func DefaultConfig() Config {
	return Config{
		RateLimit: RateLimitConfig{
			Login: FlowLimits{
				Email: WindowLimits{PerMinute: 5, PerHour: 20},
				IP:    WindowLimits{PerMinute: 20, PerHour: 100},
			},
			EmailVerification: FlowLimits{
				Email: WindowLimits{PerMinute: 3, PerHour: 10},
				IP:    WindowLimits{PerMinute: 10, PerHour: 50},
			},
			PasswordReset: FlowLimits{
				Email: WindowLimits{PerMinute: 3, PerHour: 10},
				IP:    WindowLimits{PerMinute: 10, PerHour: 50},
			},
		},
		Codes: CodesConfig{
			NodeID: 1,
			EmailVerification: CodeConfig{
				Length: 8,
				TTL:    10 * time.Minute,
			},
			PasswordReset: CodeConfig{
				Length: 8,
				TTL:    10 * time.Minute,
			},
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Rate limits
	for _, flow := range []struct {
		name   string
		limits FlowLimits
	}{
		{"Login", c.RateLimit.Login},
		{"EmailVerification", c.RateLimit.EmailVerification},
		{"PasswordReset", c.RateLimit.PasswordReset},
	} {
		if flow.limits.Email.PerMinute <= 0 || flow.limits.Email.PerHour <= 0 {
			return errors.New("RateLimit " + flow.name + " email limits must be > 0")
		}
		if flow.limits.IP.PerMinute <= 0 || flow.limits.IP.PerHour <= 0 {
			return errors.New("RateLimit " + flow.name + " IP limits must be > 0")
		}
		if flow.limits.Email.PerHour < flow.limits.Email.PerMinute {
			return errors.New("RateLimit " + flow.name + " email PerHour must be >= PerMinute")
		}
		if flow.limits.IP.PerHour < flow.limits.IP.PerMinute {
			return errors.New("RateLimit " + flow.name + " IP PerHour must be >= PerMinute")
		}
	}

	// Codes
	if c.Codes.NodeID < 0 || c.Codes.NodeID > 1023 {
		return errors.New("Codes NodeID must be between 0 and 1023")
	}
	for _, purpose := range []struct {
		name string
		cfg  CodeConfig
	}{
		{"EmailVerification", c.Codes.EmailVerification},
		{"PasswordReset", c.Codes.PasswordReset},
	} {
		if purpose.cfg.Length < 6 || purpose.cfg.Length > 64 {
			return errors.New("Codes " + purpose.name + " Length must be between 6 and 64")
		}
		if purpose.cfg.TTL <= 0 {
			return errors.New("Codes " + purpose.name + " TTL must be > 0")
		}
		if purpose.cfg.TTL > time.Hour {
			return errors.New("Codes " + purpose.name + " TTL must be <= 1h")
		}
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
