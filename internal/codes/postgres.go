package codes

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the verification-code table. The composite index serves
// both the active lookup and the bulk-invalidate predicate.
const Schema = `
CREATE TABLE IF NOT EXISTS verification_codes (
	id          BIGINT PRIMARY KEY,
	subject_key TEXT NOT NULL,
	purpose     TEXT NOT NULL,
	code_hash   VARCHAR(256) NOT NULL,
	expires_at  TIMESTAMPTZ NOT NULL,
	used        BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS verification_codes_active_idx
	ON verification_codes (subject_key, used, expires_at);
`

// PostgresStore is a pgx-backed [Store]. It also implements [AtomicIssuer]:
// the invalidate-priors-and-insert sequence of Issue runs in one
// transaction, so two concurrent issues for a pair cannot both leave an
// active record the other missed, even across processes.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a [PostgresStore] on the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema applies [Schema].
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// FindActive implements [Store], returning matches newest-first.
func (s *PostgresStore) FindActive(ctx context.Context, subjectKey string, purpose Purpose, now time.Time) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, subject_key, purpose, code_hash, expires_at, used, created_at
		FROM verification_codes
		WHERE subject_key = $1 AND purpose = $2 AND used = FALSE AND expires_at >= $3
		ORDER BY created_at DESC, id DESC`,
		subjectKey, string(purpose), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r       Record
			purpose string
		)
		if err := rows.Scan(&r.ID, &r.SubjectKey, &purpose, &r.CodeHash, &r.ExpiresAt, &r.Used, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Purpose = Purpose(purpose)
		records = append(records, r)
	}

	return records, rows.Err()
}

// InvalidateActive implements [Store].
func (s *PostgresStore) InvalidateActive(ctx context.Context, subjectKey string, purpose Purpose, now time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE verification_codes SET used = TRUE
		WHERE subject_key = $1 AND purpose = $2 AND used = FALSE AND expires_at >= $3`,
		subjectKey, string(purpose), now)
	return err
}

// InvalidateExpired implements [Store]; the sweep spans every purpose for
// the subject.
func (s *PostgresStore) InvalidateExpired(ctx context.Context, subjectKey string, now time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE verification_codes SET used = TRUE
		WHERE subject_key = $1 AND used = FALSE AND expires_at < $2`,
		subjectKey, now)
	return err
}

// Insert implements [Store].
func (s *PostgresStore) Insert(ctx context.Context, record Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO verification_codes (id, subject_key, purpose, code_hash, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.SubjectKey, string(record.Purpose), record.CodeHash,
		record.ExpiresAt, record.Used, record.CreatedAt)
	return err
}

// MarkUsed implements [Store].
func (s *PostgresStore) MarkUsed(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE verification_codes SET used = TRUE WHERE id = $1`, id)
	return err
}

// IssueAtomic implements [AtomicIssuer].
func (s *PostgresStore) IssueAtomic(ctx context.Context, record Record, now time.Time) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE verification_codes SET used = TRUE
			WHERE subject_key = $1 AND purpose = $2 AND used = FALSE AND expires_at >= $3`,
			record.SubjectKey, string(record.Purpose), now); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO verification_codes (id, subject_key, purpose, code_hash, expires_at, used, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			record.ID, record.SubjectKey, string(record.Purpose), record.CodeHash,
			record.ExpiresAt, record.Used, record.CreatedAt)
		return err
	})
}
