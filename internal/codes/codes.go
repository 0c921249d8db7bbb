package codes

import (
	"context"
	"errors"
	"time"
)

// Purpose identifies the flow a verification code belongs to.
type Purpose string

const (
	// PurposeEmailVerification codes prove control of an address during
	// registration or account email change; the subject key is the
	// normalized email.
	PurposeEmailVerification Purpose = "email-verification"
	// PurposePasswordReset codes authorize a password reset; the subject
	// key is the user id, not the raw email, so case or whitespace
	// variants of one address cannot split the lifecycle across records.
	PurposePasswordReset Purpose = "password-reset"
)

var (
	// ErrCodeInvalid is the single verification failure: wrong code, expired
	// code, superseded code, and never-issued code are indistinguishable.
	ErrCodeInvalid = errors.New("verification code invalid or expired")
	// ErrStoreUnavailable is returned when the record backend cannot be reached.
	ErrStoreUnavailable = errors.New("verification code store unavailable")
	// ErrDeliveryFailed is returned when the mail collaborator rejects the
	// dispatch. The issued record remains persisted and valid.
	ErrDeliveryFailed = errors.New("verification code delivery failed")
	// ErrUnknownPurpose is returned when no configuration exists for the purpose.
	ErrUnknownPurpose = errors.New("unknown verification purpose")
)

// Record is one persisted verification code. CodeHash is a password-grade
// hash of the plaintext code; the plaintext is never stored.
type Record struct {
	ID         int64
	SubjectKey string
	Purpose    Purpose
	CodeHash   string
	ExpiresAt  time.Time
	Used       bool
	CreatedAt  time.Time
}

// Active reports whether the record can still match a verification attempt.
func (r Record) Active(now time.Time) bool {
	return !r.Used && !now.After(r.ExpiresAt)
}

// Store persists verification records.
//
// FindActive returns used=false records with expiresAt >= now for the pair,
// ordered newest-first (createdAt desc, id desc). InvalidateActive marks
// every such record used. InvalidateExpired marks used=false records with
// expiresAt < now used, across all purposes for the subject. MarkUsed is
// idempotent; used never reverts to false.
type Store interface {
	FindActive(ctx context.Context, subjectKey string, purpose Purpose, now time.Time) ([]Record, error)
	InvalidateActive(ctx context.Context, subjectKey string, purpose Purpose, now time.Time) error
	InvalidateExpired(ctx context.Context, subjectKey string, now time.Time) error
	Insert(ctx context.Context, record Record) error
	MarkUsed(ctx context.Context, id int64) error
}

// AtomicIssuer is an optional [Store] upgrade: backends that can run the
// invalidate-priors-and-insert sequence as one transaction implement it, and
// [Manager.Issue] prefers it over the two-step path.
type AtomicIssuer interface {
	IssueAtomic(ctx context.Context, record Record, now time.Time) error
}

// Hasher hashes codes and verifies them in constant time. Satisfied by
// password.Hasher; the concrete algorithm and cost factor are configuration,
// not manager logic.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, encodedHash string) (bool, error)
}

// Mailer delivers the plaintext code to the recipient. Content rendering and
// transport are collaborator concerns.
type Mailer interface {
	SendCode(ctx context.Context, recipient string, purpose Purpose, code string) error
}
