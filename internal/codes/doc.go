// Package codes implements the one-time verification-code lifecycle used for
// email verification and password reset.
//
// # Record lifecycle
//
// A record is ACTIVE (used=false, unexpired) or USED (used=true); USED is
// terminal. Records become USED through a successful match consumed by the
// caller, a lazy expiry sweep during Verify, or supersession when Issue
// creates a newer code for the same (subject, purpose) pair. Records are
// never physically deleted: dead rows stay behind for replay detection.
//
// # Design
//
// [Manager] orchestrates generation, invalidation, and verification on top of
// a narrow [Store] interface and a password-grade [Hasher]. Plaintext codes
// exist only in the Issue call frame and the outgoing mail; the store only
// ever sees the hash. Verification failures collapse into a single
// [ErrCodeInvalid] regardless of cause, so a response never reveals whether a
// code was ever issued.
//
// # Architecture boundaries
//
// This package owns code state and transitions. It does NOT enforce request
// rate limits, decide which subject key to use per purpose, or render email
// content — those belong to the guard and its collaborators.
//
// # What this package must NOT do
//
//   - Persist or log plaintext codes.
//   - Distinguish "expired" from "wrong" from "never issued" in any return
//     value or message.
//   - Import the root authcore package.
package codes
