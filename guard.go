package authcore

import (
	internalaudit "github.com/pagebound/authcore/internal/audit"
	"github.com/pagebound/authcore/internal/codes"
	"github.com/pagebound/authcore/internal/limiters"
	"github.com/pagebound/authcore/password"
)

// Guard defines a public type used by authcore APIs.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	config   Config
	accounts AccountProvider

	codes      *codes.Manager
	codeHasher *password.Hasher
	hasher     *password.Hasher

	loginLimiter        *limiters.LoginLimiter
	verificationLimiter *limiters.EmailVerificationLimiter
	resetLimiter        *limiters.PasswordResetLimiter

	audit   *internalaudit.Dispatcher
	metrics *Metrics

	// burnHash is an Argon2id hash of a random throwaway code, computed once
	// at build time. Unknown-account reset paths verify against it so the
	// hashing work matches the known-account path.
	burnHash string
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return g.metrics.Snapshot()
}

func (g *Guard) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}
