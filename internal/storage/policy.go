// Package storage is the history and ticket storage abstraction. Every store
// comes in two variants with identical contracts: a durable adapter over the
// relational database and an in-process fallback. A factory pings the
// database once and routes all calls to one variant for the life of the
// process.
//
// Durable failures never reach callers of the history operations. They are
// absorbed under one of two named policies:
//
//   - fail-silent-write: a write that fails is logged and dropped.
//   - fail-open-read:    a read that fails returns an empty result.
//
// Each absorbed failure increments assistant_store_degraded_total{op,policy}.
package storage

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

// Named degradation policies.
const (
	PolicyFailSilentWrite = "fail-silent-write"
	PolicyFailOpenRead    = "fail-open-read"
)

// Backend names reported by stores.
const (
	BackendDurable = "durable"
	BackendMemory  = "memory"
)

// ErrStoreUnavailable is returned by operations that must hand back an id
// (conversation and ticket creation) when the durable store fails.
var ErrStoreUnavailable = errors.New("storage: durable store unavailable")

// storeDegraded counts failures absorbed by a named policy.
var storeDegraded = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "assistant_store_degraded_total",
		Help: "Durable store failures absorbed by a degradation policy.",
	},
	[]string{"op", "policy"},
)

func init() {
	prometheus.MustRegister(storeDegraded)
}

// DegradedCounter exposes the counter for op/policy, mainly for tests.
func DegradedCounter(op, policy string) prometheus.Counter {
	return storeDegraded.WithLabelValues(op, policy)
}

// Absorb records a failure handled under policy. It is a no-op for nil err.
func Absorb(ctx context.Context, op, policy string, err error) {
	if err == nil {
		return
	}
	storeDegraded.WithLabelValues(op, policy).Inc()
	sysutil.Logger(ctx).Warn().
		Err(err).
		Str("op", op).
		Str("policy", policy).
		Msg("durable store failure absorbed")
}
