package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewRedisStore(rdb, "rl")
}

func TestRedisConsumeAllWithinLimit(t *testing.T) {
	_, store := newTestRedisStore(t)
	limiter := NewLimiter(store)
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

	if err := limiter.Consume(ctx, rules); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected 6th call to be rejected, got %v", err)
	}
}

func TestRedisConsumeAllAllOrNothing(t *testing.T) {
	mr, store := newTestRedisStore(t)
	ctx := context.Background()

	rules := []Rule{
		{Key: "tight", Window: time.Minute, Limit: 1},
		{Key: "loose", Window: time.Minute, Limit: 100},
	}

	ok, err := store.ConsumeAll(ctx, rules)
	if err != nil || !ok {
		t.Fatalf("first consume: ok=%v err=%v", ok, err)
	}

	ok, err = store.ConsumeAll(ctx, rules)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if ok {
		t.Fatal("expected rejection once the tight rule is exhausted")
	}

	// The loose counter must not have been incremented by the rejected call.
	if got, err := mr.Get("rl:loose"); err != nil || got != "1" {
		t.Fatalf("expected loose counter to stay at 1, got %q err=%v", got, err)
	}
}

func TestRedisConsumeAllWindowExpiry(t *testing.T) {
	mr, store := newTestRedisStore(t)
	limiter := NewLimiter(store)
	ctx := context.Background()

	rules := []Rule{{Key: "login:email:1m:a@b.com", Window: time.Minute, Limit: 2}}

	for i := 0; i < 2; i++ {
		if err := limiter.Consume(ctx, rules); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
	if err := limiter.Consume(ctx, rules); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rejection, got %v", err)
	}

	mr.FastForward(61 * time.Second)

	if err := limiter.Consume(ctx, rules); err != nil {
		t.Fatalf("expected success after window elapse, got %v", err)
	}
}

func TestRedisConsumeAllConcurrent(t *testing.T) {
	const (
		callers = 32
		limit   = 7
	)

	_, store := newTestRedisStore(t)
	limiter := NewLimiter(store)
	rules := []Rule{{Key: "shared", Window: time.Minute, Limit: limit}}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)

	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := limiter.Consume(context.Background(), rules); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if admitted != limit {
		t.Fatalf("expected exactly %d admissions, got %d", limit, admitted)
	}
}

func TestRedisConsumeAllUnavailable(t *testing.T) {
	mr, store := newTestRedisStore(t)
	mr.Close()

	_, err := store.ConsumeAll(context.Background(), []Rule{{Key: "k", Window: time.Minute, Limit: 5}})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
