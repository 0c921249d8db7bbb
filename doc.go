// Package authcore provides the authentication security core for account
// flows: multi-rule login rate limiting with evaluate-then-commit semantics,
// and one-time verification codes for email verification and password reset.
//
// The package is designed for concurrent server workloads: Guard methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Guard], [Builder], [Config],
// and value types (MetricsSnapshot, APIError, AuditEvent, etc.). All internal
// coordination — rule construction, counter stores, code lifecycle, audit
// dispatch — lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or code plaintext in its public
//     API beyond the Mailer dispatch path.
//   - Persist accounts or issue session tokens; those belong to the caller's
//     [AccountProvider] and token service.
//   - Reveal through error shape or timing whether an email address has an
//     account, outside the deliberately enumerable registration check.
//
// # Security contract
//
// Rejected rate-limit checks never consume quota. Verification codes are
// stored only as Argon2id hashes, at most one is active per (subject,
// purpose), and every verification failure — wrong code, expired, superseded,
// never issued — is indistinguishable to the caller.
package authcore
