package internal

import (
	"crypto/rand"
	"errors"
	"strings"
)

// CharsetAlphanumeric is the default verification-code alphabet.
//
// 0/O and 1/l/I are kept: codes are copy-pasted from email, not transcribed
// by hand, and the full alphabet maximizes per-character entropy.
const CharsetAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	minCodeLength = 4
	maxCodeLength = 64
)

// NewCode draws a random code of the given length from charset using
// crypto/rand.
//
// Sampling uses rejection over whole bytes so every charset character is
// equally likely regardless of charset size.
// NewCode may return an error when input validation or the entropy source fails.
func NewCode(length int, charset string) (string, error) {
	if length < minCodeLength || length > maxCodeLength {
		return "", errors.New("invalid code length")
	}
	if len(charset) < 2 || len(charset) > 256 {
		return "", errors.New("invalid code charset")
	}

	// Largest multiple of len(charset) below 256; bytes at or above it are
	// rejected to avoid modulo bias.
	bound := 256 - (256 % len(charset))

	var b strings.Builder
	b.Grow(length)

	buf := make([]byte, length)
	for b.Len() < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, raw := range buf {
			if int(raw) >= bound {
				continue
			}
			b.WriteByte(charset[int(raw)%len(charset)])
			if b.Len() == length {
				break
			}
		}
	}

	return b.String(), nil
}

// NormalizeSubject canonicalizes a subject key (email or user id) so that
// case and surrounding whitespace never split one identity across records.
func NormalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}
