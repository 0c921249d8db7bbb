// Package rate implements the multi-rule, fixed-window request rate limiter
// guarding login and verification-code endpoints.
//
// # Window semantics
//
// Fixed-window counters: a counter resets to zero in whole increments of the
// rule window, atomically on first touch after expiry. A [Limiter.Consume]
// call is evaluate-then-commit: every rule is checked before any counter is
// incremented, so a rejected call never consumes quota.
//
// # Backends
//
// [MemoryStore] is a mutex-guarded in-process map for tests and
// single-process deployments. [RedisStore] runs the whole
// check-all-then-increment-all sequence inside one Lua script so concurrent
// callers sharing a key cannot exceed a limit or lose updates.
//
// # What this package must NOT do
//
//   - Decide rule tables or error wording (those live in internal/limiters
//     and the guard).
//   - Be imported outside the authcore module.
package rate
