package authcore

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"

	internalaudit "github.com/pagebound/authcore/internal/audit"
	"github.com/pagebound/authcore/internal/codes"
	"github.com/pagebound/authcore/internal/rate"
)

// Account is the minimal account view the guard needs from the caller's
// persistence layer.
type Account struct {
	UserID        string
	Email         string
	PasswordHash  string
	EmailVerified bool
}

// AccountProvider is the interface callers must implement to integrate
// authcore with their account database. Lookups for unknown addresses must
// return [ErrUserNotFound] (wrapped is fine); any other error is treated as a
// backend outage.
//
// Implementations are called concurrently and must be safe for concurrent
// use.
type AccountProvider interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	LookupByEmail(ctx context.Context, email string) (Account, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	MarkEmailVerified(ctx context.Context, userID string) error
}

// Purpose identifies the flow a verification code belongs to.
type Purpose = codes.Purpose

const (
	// PurposeEmailVerification is an exported constant or variable used by the security core.
	PurposeEmailVerification = codes.PurposeEmailVerification
	// PurposePasswordReset is an exported constant or variable used by the security core.
	PurposePasswordReset = codes.PurposePasswordReset
)

// Mailer delivers plaintext verification codes to recipients. Implementations
// must not persist the plaintext.
type Mailer = codes.Mailer

// CodeStore is the persistence interface for verification-code records.
// [NewMemoryCodeStore] and [NewPostgresCodeStore] provide the built-in
// backends.
type CodeStore = codes.Store

// CodeRecord is a persisted verification-code record. The plaintext code is
// never part of the record.
type CodeRecord = codes.Record

// CounterStore is the multi-key evaluate-then-commit counter backend used by
// the rate limiter.
type CounterStore = rate.CounterStore

// AuditEvent is a structured audit record emitted by the guard.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the guard's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewMemoryCodeStore creates the in-process verification-code store. It is
// intended for tests and single-process deployments.
func NewMemoryCodeStore() CodeStore {
	return codes.NewMemoryStore()
}

// PostgresCodeSchema is the DDL for the verification-code table, including
// the composite index that serves active-record scans.
const PostgresCodeSchema = codes.Schema

// NewPostgresCodeStore creates the pgx-backed verification-code store. The
// returned store upgrades Issue to a single transaction. Apply
// [PostgresCodeSchema] before first use.
func NewPostgresCodeStore(pool *pgxpool.Pool) CodeStore {
	return codes.NewPostgresStore(pool)
}

// NewMemoryCounterStore creates the in-process counter store. It is intended
// for tests and single-process deployments; production deployments should
// prefer the Redis backend wired through [Builder.WithRedis].
func NewMemoryCounterStore() CounterStore {
	return rate.NewMemoryStore()
}
