package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T) (*Limiter, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	return NewLimiter(store), store
}

func TestConsumeWithinLimit(t *testing.T) {
	limiter, store := newTestLimiter(t)
	ctx := context.Background()

	rules := []Rule{
		{Key: "login:email:1m:a@b.com", Window: time.Minute, Limit: 5},
		{Key: "login:ip:1m:10.0.0.1", Window: time.Minute, Limit: 20},
	}

	for i := 0; i < 5; i++ {
		if err := limiter.Consume(ctx, rules); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}

	if got := store.Count("login:email:1m:a@b.com"); got != 5 {
		t.Fatalf("expected email counter at 5, got %d", got)
	}
	if got := store.Count("login:ip:1m:10.0.0.1"); got != 5 {
		t.Fatalf("expected ip counter at 5, got %d", got)
	}
}

func TestConsumeRejectsWithoutBurningQuota(t *testing.T) {
	limiter, store := newTestLimiter(t)
	ctx := context.Background()

	rules := []Rule{
		{Key: "login:email:1m:a@b.com", Window: time.Minute, Limit: 2},
		{Key: "login:ip:1m:10.0.0.1", Window: time.Minute, Limit: 100},
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Consume(ctx, rules); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}

	// Rejections must leave every counter untouched, including the rule
	// that still had headroom.
	for i := 0; i < 10; i++ {
		if err := limiter.Consume(ctx, rules); !errors.Is(err, ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
	}

	if got := store.Count("login:email:1m:a@b.com"); got != 2 {
		t.Fatalf("expected email counter to stay at 2, got %d", got)
	}
	if got := store.Count("login:ip:1m:10.0.0.1"); got != 2 {
		t.Fatalf("expected ip counter to stay at 2, got %d", got)
	}
}

func TestConsumeWindowReset(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	limiter := NewLimiter(store)
	ctx := context.Background()

	rules := []Rule{{Key: "login:email:1m:a@b.com", Window: time.Minute, Limit: 5}}

	for i := 0; i < 5; i++ {
		if err := limiter.Consume(ctx, rules); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
	if err := limiter.Consume(ctx, rules); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected 6th call to be rejected, got %v", err)
	}

	// The fixed window resets in one step once it elapses.
	now = now.Add(time.Minute + time.Second)
	if err := limiter.Consume(ctx, rules); err != nil {
		t.Fatalf("expected call after window elapse to succeed, got %v", err)
	}
	if got := store.Count("login:email:1m:a@b.com"); got != 1 {
		t.Fatalf("expected fresh window counter at 1, got %d", got)
	}
}

func TestConsumeDuplicateKeyCountedOnce(t *testing.T) {
	limiter, store := newTestLimiter(t)
	ctx := context.Background()

	rules := []Rule{
		{Key: "login:email:1m:a@b.com", Window: time.Minute, Limit: 5},
		{Key: "login:email:1m:a@b.com", Window: time.Minute, Limit: 5},
	}

	if err := limiter.Consume(ctx, rules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Count("login:email:1m:a@b.com"); got != 1 {
		t.Fatalf("expected duplicate key to count once, got %d", got)
	}
}

func TestConsumeZeroLimitAlwaysRejects(t *testing.T) {
	limiter, store := newTestLimiter(t)
	ctx := context.Background()

	rules := []Rule{
		{Key: "login:ip:1m:10.0.0.1", Window: time.Minute, Limit: 100},
		{Key: "blocked", Window: time.Minute, Limit: 0},
	}

	if err := limiter.Consume(ctx, rules); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for zero limit, got %v", err)
	}
	if got := store.Count("login:ip:1m:10.0.0.1"); got != 0 {
		t.Fatalf("expected no counter mutation, got %d", got)
	}
}

func TestConsumeEmptyRuleSet(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	if err := limiter.Consume(context.Background(), nil); err == nil {
		t.Fatal("expected empty rule set to be rejected")
	}
}

func TestConsumeConcurrentSingleRule(t *testing.T) {
	const (
		callers = 64
		limit   = 10
	)

	limiter, store := newTestLimiter(t)
	rules := []Rule{{Key: "login:email:1m:a@b.com", Window: time.Minute, Limit: limit}}

	var (
		wg        sync.WaitGroup
		admitted  int64
		admitLock sync.Mutex
	)

	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := limiter.Consume(context.Background(), rules); err == nil {
				admitLock.Lock()
				admitted++
				admitLock.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if admitted != limit {
		t.Fatalf("expected exactly %d admissions under %d concurrent calls, got %d", limit, callers, admitted)
	}
	if got := store.Count("login:email:1m:a@b.com"); got != limit {
		t.Fatalf("expected counter to end at %d, got %d", limit, got)
	}
}

func TestConsumeCancelledContext(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rules := []Rule{{Key: "k", Window: time.Minute, Limit: 5}}
	if err := limiter.Consume(ctx, rules); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
