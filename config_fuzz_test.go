package authcore

import "testing"

// FuzzParseConfig exercises the YAML config parser with arbitrary documents.
// Goal: no panics; a returned config must always validate.
func FuzzParseConfig(f *testing.F) {
	f.Add("")
	f.Add("codes:\n  node_id: 7\n")
	f.Add("codes:\n  password_reset:\n    ttl: 15m\n")
	f.Add("rate_limit:\n  login:\n    email:\n      per_minute: 5\n      per_hour: 20\n")
	f.Add("codes: [unbalanced")
	f.Add("codes:\n  email_verification:\n    ttl: soon\n")

	f.Fuzz(func(t *testing.T, input string) {
		cfg, err := ParseConfig([]byte(input))
		if err != nil {
			return
		}
		if vErr := cfg.Validate(); vErr != nil {
			t.Fatalf("ParseConfig returned an invalid config: %v", vErr)
		}
	})
}
