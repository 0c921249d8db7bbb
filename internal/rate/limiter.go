package rate

import (
	"context"
	"errors"
	"time"
)

// Rule is one (key, window, limit) triple evaluated by the limiter.
//
// The key must already encode the window granularity (a per-minute and a
// per-hour rule for the same identity use distinct keys) so rules for one
// identity count independently.
type Rule struct {
	Key    string
	Window time.Duration
	Limit  int
}

// CounterStore atomically evaluates and commits a set of counter increments.
//
// ConsumeAll must treat the rule set as one unit: if incrementing any counter
// by one would exceed its limit, no counter is mutated and ok is false.
// Otherwise every counter is incremented by one, initializing expired or
// missing counters to a fresh window first. The check-then-increment sequence
// must be atomic relative to concurrent ConsumeAll calls sharing a key.
type CounterStore interface {
	ConsumeAll(ctx context.Context, rules []Rule) (ok bool, err error)
}

// Limiter evaluates ordered rule sets against a [CounterStore],
// all-or-nothing.
//
// Limiter instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Limiter struct {
	store CounterStore
}

// NewLimiter creates a [Limiter] backed by the given counter store.
func NewLimiter(store CounterStore) *Limiter {
	return &Limiter{store: store}
}

// Consume admits the request against every rule or rejects it against all of
// them.
//
// Consume returns [ErrRateLimited] when any rule would be exceeded; in that
// case no counter has been mutated, so rejected attempts do not burn quota.
// A rule with Limit <= 0 always rejects. Duplicate keys within one call are
// counted once (first occurrence wins).
// Consume may also return [ErrStoreUnavailable] when the backend fails.
func (l *Limiter) Consume(ctx context.Context, rules []Rule) error {
	if l == nil || l.store == nil {
		return ErrStoreUnavailable
	}
	if len(rules) == 0 {
		return errors.New("empty rule set")
	}

	deduped := dedupeByKey(rules)
	for _, r := range deduped {
		if r.Limit <= 0 {
			return ErrRateLimited
		}
		if r.Key == "" || r.Window <= 0 {
			return errors.New("invalid rule")
		}
	}

	ok, err := l.store.ConsumeAll(ctx, deduped)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRateLimited
	}

	return nil
}

func dedupeByKey(rules []Rule) []Rule {
	if len(rules) == 1 {
		return rules
	}

	seen := make(map[string]struct{}, len(rules))
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if _, dup := seen[r.Key]; dup {
			continue
		}
		seen[r.Key] = struct{}{}
		out = append(out, r)
	}
	return out
}
