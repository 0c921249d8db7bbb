package authcore

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileCodeConfig mirrors CodeConfig for YAML decoding. TTL is accepted as a
// Go duration string ("10m", "1h30m").
type fileCodeConfig struct {
	Length *int    `yaml:"length"`
	TTL    *string `yaml:"ttl"`
}

type fileCodesConfig struct {
	NodeID            *int64         `yaml:"node_id"`
	EmailVerification fileCodeConfig `yaml:"email_verification"`
	PasswordReset     fileCodeConfig `yaml:"password_reset"`
}

type fileConfig struct {
	RateLimit *RateLimitConfig `yaml:"rate_limit"`
	Codes     *fileCodesConfig `yaml:"codes"`
	Password  *PasswordConfig  `yaml:"password"`
	Audit     *AuditConfig     `yaml:"audit"`
	Metrics   *MetricsConfig   `yaml:"metrics"`
}

// ParseConfig decodes YAML configuration on top of [DefaultConfig] and
// validates the result. Absent sections keep their defaults.
//
// ParseConfig may return an error when input validation, dependency calls, or security checks fail.
// ParseConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if f.RateLimit != nil {
		cfg.RateLimit = *f.RateLimit
	}
	if f.Password != nil {
		cfg.Password = *f.Password
	}
	if f.Audit != nil {
		cfg.Audit = *f.Audit
	}
	if f.Metrics != nil {
		cfg.Metrics = *f.Metrics
	}
	if f.Codes != nil {
		if f.Codes.NodeID != nil {
			cfg.Codes.NodeID = *f.Codes.NodeID
		}
		if err := applyCodeConfig(&cfg.Codes.EmailVerification, f.Codes.EmailVerification); err != nil {
			return Config{}, fmt.Errorf("codes.email_verification: %w", err)
		}
		if err := applyCodeConfig(&cfg.Codes.PasswordReset, f.Codes.PasswordReset); err != nil {
			return Config{}, fmt.Errorf("codes.password_reset: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
//
// LoadConfig may return an error when input validation, dependency calls, or security checks fail.
// LoadConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

func applyCodeConfig(dst *CodeConfig, src fileCodeConfig) error {
	if src.Length != nil {
		dst.Length = *src.Length
	}
	if src.TTL != nil {
		ttl, err := time.ParseDuration(*src.TTL)
		if err != nil {
			return fmt.Errorf("invalid ttl %q: %w", *src.TTL, err)
		}
		dst.TTL = ttl
	}
	return nil
}
