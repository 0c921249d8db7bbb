package codes

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const lockStripes = 64

// PurposeConfig tunes code shape and lifetime per purpose.
//
// PurposeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PurposeConfig struct {
	Length  int
	Charset string
	TTL     time.Duration
}

// Generator produces plaintext codes; injected so tests can pin outputs.
type Generator func(length int, charset string) (string, error)

// Manager orchestrates the verification-code lifecycle on top of a [Store],
// a [Hasher], and a [Mailer].
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	store    Store
	hasher   Hasher
	mailer   Mailer
	node     *snowflake.Node
	purposes map[Purpose]PurposeConfig
	generate Generator
	now      func() time.Time

	// Striped per-subject locks serialize the invalidate-then-insert window
	// of Issue and the consume-then-commit window of ConsumeThen against
	// concurrent calls for the same subject in this process. Cross-process
	// serialization for Issue comes from [AtomicIssuer] backends.
	locks [lockStripes]sync.Mutex
}

// NewManager creates a [Manager]. The snowflake node provides sortable,
// time-ordered record ids.
func NewManager(
	store Store,
	hasher Hasher,
	mailer Mailer,
	node *snowflake.Node,
	purposes map[Purpose]PurposeConfig,
	generate Generator,
) (*Manager, error) {
	if store == nil || hasher == nil || node == nil {
		return nil, errors.New("codes: store, hasher, and node are required")
	}
	if generate == nil {
		return nil, errors.New("codes: generator is required")
	}
	if len(purposes) == 0 {
		return nil, errors.New("codes: at least one purpose config is required")
	}
	for purpose, cfg := range purposes {
		if cfg.Length <= 0 || cfg.Charset == "" || cfg.TTL <= 0 {
			return nil, fmt.Errorf("codes: invalid config for purpose %q", purpose)
		}
	}

	return &Manager{
		store:    store,
		hasher:   hasher,
		mailer:   mailer,
		node:     node,
		purposes: purposes,
		generate: generate,
		now:      time.Now,
	}, nil
}

// Issue invalidates every active code for (subjectKey, purpose), persists a
// fresh one, and dispatches the plaintext to the recipient.
//
// After Issue returns nil, exactly one active record exists for the pair.
// When dispatch fails the call returns [ErrDeliveryFailed] but the record
// stays persisted and valid, so an immediate re-send is safe and cheap.
func (m *Manager) Issue(ctx context.Context, subjectKey, recipient string, purpose Purpose) error {
	cfg, ok := m.purposes[purpose]
	if !ok {
		return ErrUnknownPurpose
	}

	plaintext, err := m.generate(cfg.Length, cfg.Charset)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	codeHash, err := m.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	now := m.now()
	record := Record{
		ID:         m.node.Generate().Int64(),
		SubjectKey: subjectKey,
		Purpose:    purpose,
		CodeHash:   codeHash,
		ExpiresAt:  now.Add(cfg.TTL),
		Used:       false,
		CreatedAt:  now,
	}

	if err := m.persist(ctx, subjectKey, record, now); err != nil {
		return err
	}

	// Dispatch happens outside the subject lock: mail transport is slow and
	// a concurrent Issue would supersede this record anyway.
	if m.mailer != nil {
		if err := m.mailer.SendCode(ctx, recipient, purpose, plaintext); err != nil {
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	}

	return nil
}

func (m *Manager) persist(ctx context.Context, subjectKey string, record Record, now time.Time) error {
	lock := m.subjectLock(subjectKey)
	lock.Lock()
	defer lock.Unlock()

	if issuer, ok := m.store.(AtomicIssuer); ok {
		if err := issuer.IssueAtomic(ctx, record, now); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	}

	if err := m.store.InvalidateActive(ctx, subjectKey, record.Purpose, now); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := m.store.Insert(ctx, record); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Verify scans the active records for (subjectKey, purpose) newest-first and
// returns the first record whose hash matches the code.
//
// Verify does NOT mark the match used; callers decide when consumption
// happens. Every failure — wrong code, expired, superseded, never issued —
// returns the same [ErrCodeInvalid].
func (m *Manager) Verify(ctx context.Context, subjectKey string, purpose Purpose, code string) (Record, error) {
	if _, ok := m.purposes[purpose]; !ok {
		return Record{}, ErrUnknownPurpose
	}
	if code == "" {
		return Record{}, ErrCodeInvalid
	}

	now := m.now()

	// Lazy sweep: retire expired records for this subject in-line instead of
	// relying on a background job.
	if err := m.store.InvalidateExpired(ctx, subjectKey, now); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	active, err := m.store.FindActive(ctx, subjectKey, purpose, now)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Newest-first: a legitimately re-requested code wins over any stale
	// stray record invalidation might have missed.
	for _, record := range active {
		match, err := m.hasher.Verify(code, record.CodeHash)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if match {
			return record, nil
		}
	}

	return Record{}, ErrCodeInvalid
}

// Consume marks the record used. Used is monotonic; consuming an already
// used record is a no-op.
func (m *Manager) Consume(ctx context.Context, record Record) error {
	lock := m.subjectLock(record.SubjectKey)
	lock.Lock()
	defer lock.Unlock()

	if err := m.store.MarkUsed(ctx, record.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ConsumeThen marks the record used and then runs commit, both under the
// subject lock.
//
// The ordering is fail-closed: the code is burned before the caller's state
// change commits, so an interruption can cost the user a re-request but can
// never leave a usable code behind a completed state change (the replay the
// password-reset flow must rule out).
func (m *Manager) ConsumeThen(ctx context.Context, record Record, commit func(context.Context) error) error {
	lock := m.subjectLock(record.SubjectKey)
	lock.Lock()
	defer lock.Unlock()

	if err := m.store.MarkUsed(ctx, record.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return commit(ctx)
}

func (m *Manager) subjectLock(subjectKey string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectKey))
	return &m.locks[h.Sum32()%lockStripes]
}
