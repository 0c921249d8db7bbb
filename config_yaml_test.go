package authcore

import (
	"strings"
	"testing"
	"time"
)

func TestParseConfigOverlaysDefaults(t *testing.T) {
	data := []byte(`
codes:
  node_id: 7
  password_reset:
    length: 10
    ttl: 15m
metrics:
  enabled: true
`)

	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Codes.NodeID != 7 {
		t.Fatalf("node id = %d", cfg.Codes.NodeID)
	}
	if cfg.Codes.PasswordReset.Length != 10 || cfg.Codes.PasswordReset.TTL != 15*time.Minute {
		t.Fatalf("password reset code config = %+v", cfg.Codes.PasswordReset)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("metrics should be enabled")
	}

	// Untouched sections keep their defaults.
	def := DefaultConfig()
	if cfg.Codes.EmailVerification != def.Codes.EmailVerification {
		t.Fatalf("email verification config changed: %+v", cfg.Codes.EmailVerification)
	}
	if cfg.RateLimit != def.RateLimit {
		t.Fatalf("rate limit config changed: %+v", cfg.RateLimit)
	}
	if cfg.Password != def.Password {
		t.Fatalf("password config changed: %+v", cfg.Password)
	}
}

func TestParseConfigEmptyIsDefault(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("empty input must yield defaults, got %+v", cfg)
	}
}

func TestParseConfigBadTTL(t *testing.T) {
	_, err := ParseConfig([]byte("codes:\n  email_verification:\n    ttl: soon\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid ttl") {
		t.Fatalf("expected ttl parse error, got %v", err)
	}
}

func TestParseConfigValidates(t *testing.T) {
	_, err := ParseConfig([]byte("codes:\n  node_id: 5000\n"))
	if err == nil || !strings.Contains(err.Error(), "NodeID") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseConfigMalformedYAML(t *testing.T) {
	_, err := ParseConfig([]byte("codes: [unbalanced"))
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected yaml error, got %v", err)
	}
}
