package codes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process [Store] for tests and single-process
// deployments. All mutations run under one mutex, so each Store operation is
// atomic on its own.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryStore creates an empty in-process record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FindActive implements [Store], returning matches newest-first.
func (s *MemoryStore) FindActive(ctx context.Context, subjectKey string, purpose Purpose, now time.Time) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var active []Record
	for _, r := range s.records {
		if r.SubjectKey == subjectKey && r.Purpose == purpose && !r.Used && !now.After(r.ExpiresAt) {
			active = append(active, r)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.After(active[j].CreatedAt)
		}
		// Snowflake ids are time-ordered; they break created-at ties.
		return active[i].ID > active[j].ID
	})

	return active, nil
}

// InvalidateActive implements [Store].
func (s *MemoryStore) InvalidateActive(ctx context.Context, subjectKey string, purpose Purpose, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		r := &s.records[i]
		if r.SubjectKey == subjectKey && r.Purpose == purpose && !r.Used && !now.After(r.ExpiresAt) {
			r.Used = true
		}
	}
	return nil
}

// InvalidateExpired implements [Store]; the sweep spans every purpose for
// the subject.
func (s *MemoryStore) InvalidateExpired(ctx context.Context, subjectKey string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		r := &s.records[i]
		if r.SubjectKey == subjectKey && !r.Used && now.After(r.ExpiresAt) {
			r.Used = true
		}
	}
	return nil
}

// Insert implements [Store].
func (s *MemoryStore) Insert(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	return nil
}

// MarkUsed implements [Store]. Unknown ids are ignored; used never reverts.
func (s *MemoryStore) MarkUsed(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Used = true
		}
	}
	return nil
}

// Records returns copies of every record for the subject, for inspection in
// tests.
func (s *MemoryStore) Records(subjectKey string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Record
	for _, r := range s.records {
		if r.SubjectKey == subjectKey {
			out = append(out, r)
		}
	}
	return out
}
