package authcore

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"

	"github.com/pagebound/authcore/internal"
	internalaudit "github.com/pagebound/authcore/internal/audit"
	"github.com/pagebound/authcore/internal/codes"
	"github.com/pagebound/authcore/internal/limiters"
	"github.com/pagebound/authcore/internal/rate"
	"github.com/pagebound/authcore/password"
)

// rateLimiterPrefix namespaces all limiter keys in a shared Redis.
const rateLimiterPrefix = "ac"

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	counterStore CounterStore
	codeStore    CodeStore

	accounts  AccountProvider
	mailer    Mailer
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis wires the Redis-backed counter store. Ignored when
// [Builder.WithCounterStore] supplies an explicit backend.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithCounterStore describes the withcounterstore operation and its observable behavior.
//
// WithCounterStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCounterStore(store CounterStore) *Builder {
	b.counterStore = store
	return b
}

// WithCodeStore describes the withcodestore operation and its observable behavior.
//
// WithCodeStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCodeStore(store CodeStore) *Builder {
	b.codeStore = store
	return b
}

// WithAccounts describes the withaccounts operation and its observable behavior.
//
// WithAccounts does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAccounts(provider AccountProvider) *Builder {
	b.accounts = provider
	return b
}

// WithMailer describes the withmailer operation and its observable behavior.
//
// WithMailer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Guard, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.accounts == nil {
		return nil, errors.New("account provider required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	counterStore := b.counterStore
	if counterStore == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or counter store required")
		}
		counterStore = rate.NewRedisStore(b.redis, rateLimiterPrefix)
	}

	codeStore := b.codeStore
	if codeStore == nil {
		// Single-process default. Multi-instance deployments must wire a
		// shared backend via WithCodeStore (see NewPostgresCodeStore).
		codeStore = codes.NewMemoryStore()
	}

	hasher, err := password.NewHasher(password.Params{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	codeHasher, err := password.NewHasher(password.CodeParams())
	if err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(cfg.Codes.NodeID)
	if err != nil {
		return nil, err
	}

	manager, err := codes.NewManager(
		codeStore,
		codeHasher,
		b.mailer,
		node,
		map[codes.Purpose]codes.PurposeConfig{
			PurposeEmailVerification: {
				Length:  cfg.Codes.EmailVerification.Length,
				Charset: internal.CharsetAlphanumeric,
				TTL:     cfg.Codes.EmailVerification.TTL,
			},
			PurposePasswordReset: {
				Length:  cfg.Codes.PasswordReset.Length,
				Charset: internal.CharsetAlphanumeric,
				TTL:     cfg.Codes.PasswordReset.TTL,
			},
		},
		internal.NewCode,
	)
	if err != nil {
		return nil, err
	}

	throwaway, err := internal.NewCode(cfg.Codes.PasswordReset.Length, internal.CharsetAlphanumeric)
	if err != nil {
		return nil, err
	}
	burnHash, err := codeHasher.Hash(throwaway)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(counterStore)

	guard := &Guard{
		config:     cfg,
		accounts:   b.accounts,
		codes:      manager,
		codeHasher: codeHasher,
		hasher:     hasher,
		loginLimiter: limiters.NewLoginLimiter(limiter, limiters.LoginConfig{
			Email: toWindowLimits(cfg.RateLimit.Login.Email),
			IP:    toWindowLimits(cfg.RateLimit.Login.IP),
		}),
		verificationLimiter: limiters.NewEmailVerificationLimiter(limiter, limiters.EmailVerificationConfig{
			Email: toWindowLimits(cfg.RateLimit.EmailVerification.Email),
			IP:    toWindowLimits(cfg.RateLimit.EmailVerification.IP),
		}),
		resetLimiter: limiters.NewPasswordResetLimiter(limiter, limiters.PasswordResetConfig{
			Email: toWindowLimits(cfg.RateLimit.PasswordReset.Email),
			IP:    toWindowLimits(cfg.RateLimit.PasswordReset.IP),
		}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics:  NewMetrics(cfg.Metrics),
		burnHash: burnHash,
	}

	b.built = true

	return guard, nil
}

func toWindowLimits(w WindowLimits) limiters.WindowLimits {
	return limiters.WindowLimits{
		PerMinute: w.PerMinute,
		PerHour:   w.PerHour,
	}
}
