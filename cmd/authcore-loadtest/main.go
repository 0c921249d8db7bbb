// Command authcore-loadtest measures guard throughput against a live or
// embedded Redis.
//
// Two phases run back to back: a login-check phase hammering the evaluate-
// then-commit limiter across many identities, and a verify phase driving the
// full issue-and-confirm code lifecycle (Argon2id work included, so verify
// ops are deliberately fewer).
//
// Run against miniredis:
//
//	go run ./cmd/authcore-loadtest
//
// Run against a real Redis:
//
//	go run ./cmd/authcore-loadtest -redis-addr localhost:6379
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/pagebound/authcore"
)

func main() {
	var (
		identities  = flag.Int("identities", 10000, "number of distinct login identities")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		loginOps    = flag.Int("login-ops", 100000, "operations in the login-check phase")
		verifyOps   = flag.Int("verify-ops", 200, "operations in the verify phase (Argon2id-heavy)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *identities <= 0 || *concurrency <= 0 || *loginOps <= 0 || *verifyOps <= 0 {
		fmt.Fprintln(os.Stderr, "identities, concurrency, login-ops, and verify-ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := authcore.DefaultConfig()
	// Per-IP limits would throttle a single-host load generator immediately.
	cfg.RateLimit.Login.IP = authcore.WindowLimits{PerMinute: 1 << 20, PerHour: 1 << 24}
	cfg.RateLimit.EmailVerification.IP = authcore.WindowLimits{PerMinute: 1 << 20, PerHour: 1 << 24}
	cfg.RateLimit.EmailVerification.Email = authcore.WindowLimits{PerMinute: 1 << 10, PerHour: 1 << 14}

	mailer := &captureMailer{}
	guard, err := authcore.New().
		WithConfig(cfg).
		WithRedis(client).
		WithAccounts(emptyAccounts{}).
		WithMailer(mailer).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "guard build: %v\n", err)
		os.Exit(1)
	}
	defer guard.Close()

	loginStats := runLoginPhase(ctx, guard, *identities, *loginOps, *concurrency)
	verifyStats := runVerifyPhase(ctx, guard, mailer, *verifyOps, *concurrency)

	fmt.Println("---- results ----")
	printStats("login-check", loginStats)
	printStats("verify", verifyStats)
}

func runLoginPhase(ctx context.Context, guard *authcore.Guard, identities, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				email := fmt.Sprintf("user-%d@load.test", r.Intn(identities))
				t0 := time.Now()
				err := guard.AllowLogin(ctx, email, "203.0.113.1")
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runVerifyPhase(ctx context.Context, guard *authcore.Guard, mailer *captureMailer, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				email := fmt.Sprintf("verify-%d-%d@load.test", worker, i)

				t0 := time.Now()
				err := guard.StartRegistration(ctx, email, "203.0.113.1")
				if err == nil {
					code, ok := mailer.take(email)
					if ok {
						// The confirm path fails at account lookup after the
						// hash comparison; the Argon2id cost is what we are
						// measuring here.
						_ = guard.ConfirmEmailVerification(ctx, email, code)
					} else {
						err = fmt.Errorf("no code captured for %s", email)
					}
				}
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// captureMailer keeps the latest code per recipient so the verify phase can
// confirm what it just issued.
type captureMailer struct {
	codes sync.Map
}

func (m *captureMailer) SendCode(_ context.Context, recipient string, _ authcore.Purpose, code string) error {
	m.codes.Store(recipient, code)
	return nil
}

func (m *captureMailer) take(recipient string) (string, bool) {
	v, ok := m.codes.LoadAndDelete(recipient)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// emptyAccounts is an AccountProvider with no accounts; the load test only
// exercises pre-account paths.
type emptyAccounts struct{}

func (emptyAccounts) EmailExists(context.Context, string) (bool, error) { return false, nil }

func (emptyAccounts) LookupByEmail(context.Context, string) (authcore.Account, error) {
	return authcore.Account{}, authcore.ErrUserNotFound
}

func (emptyAccounts) UpdatePasswordHash(context.Context, string, string) error {
	return authcore.ErrUserNotFound
}

func (emptyAccounts) MarkEmailVerified(context.Context, string) error {
	return authcore.ErrUserNotFound
}
