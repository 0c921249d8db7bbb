// Package internal holds shared security primitives for authcore: CSPRNG
// verification-code generation and subject-key normalization.
//
// # What this package must NOT do
//
//   - Import any other authcore package.
//   - Use math/rand for anything secret-bearing.
package internal
