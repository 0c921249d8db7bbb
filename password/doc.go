// Package password implements Argon2id hashing and constant-time verification
// for user passwords and one-time verification codes.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Two parameter presets are provided: [DefaultParams] for user passwords and
// [CodeParams] for short-lived verification codes, where the outer rate
// limiter bounds attempts and per-request latency matters more than raw
// hardness.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Input policy (password
// length, code charset) is enforced by callers; the only input this package
// rejects is the empty string.
//
// # What this package must NOT do
//
//   - Store or retrieve secrets — callers supply plaintext and receive hashes.
//   - Import any other authcore package.
//   - Log plaintext secrets or hash parameters at runtime.
package password
