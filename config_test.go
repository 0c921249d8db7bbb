package authcore

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero login limit",
			mutate:  func(c *Config) { c.RateLimit.Login.Email.PerMinute = 0 },
			wantErr: "email limits must be > 0",
		},
		{
			name:    "hour below minute",
			mutate:  func(c *Config) { c.RateLimit.PasswordReset.IP = WindowLimits{PerMinute: 10, PerHour: 5} },
			wantErr: "PerHour must be >= PerMinute",
		},
		{
			name:    "node id out of range",
			mutate:  func(c *Config) { c.Codes.NodeID = 1024 },
			wantErr: "NodeID",
		},
		{
			name:    "code too short",
			mutate:  func(c *Config) { c.Codes.EmailVerification.Length = 4 },
			wantErr: "Length must be between 6 and 64",
		},
		{
			name:    "ttl too long",
			mutate:  func(c *Config) { c.Codes.PasswordReset.TTL = 2 * time.Hour },
			wantErr: "TTL must be <= 1h",
		},
		{
			name:    "weak argon memory",
			mutate:  func(c *Config) { c.Password.Memory = 1024 },
			wantErr: "Memory must be >= 8192 KB",
		},
		{
			name:    "short salt",
			mutate:  func(c *Config) { c.Password.SaltLength = 8 },
			wantErr: "SaltLength must be >= 16",
		},
		{
			name: "audit enabled with no buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantErr: "BufferSize must be > 0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}
