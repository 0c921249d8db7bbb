// Package limiters provides flow-specific rate limiting policy built on top
// of the internal/rate primitives.
//
// # Limiters
//
//   - [LoginLimiter] — per-email + per-IP throttle for login attempts.
//   - [EmailVerificationLimiter] — per-email + per-IP throttle for
//     verification-code sends.
//   - [PasswordResetLimiter] — per-email + per-IP throttle for reset
//     requests.
//
// All limiters are nil-safe: calling any method on a nil receiver returns nil.
//
// # Architecture boundaries
//
// Each limiter owns its key namespace and error types; thresholds come from
// Config structs supplied at construction time. Window granularity is baked
// into the key, so per-minute and per-hour rules for one identity count
// independently. Mechanism (atomicity, fixed-window reset, all-or-nothing
// evaluation) lives in internal/rate.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling internal package except internal/rate.
//   - Make policy decisions beyond counting — the guard decides consequences.
package limiters
