// SPDX-License-Identifier: MPL-2.0

// Package status caches live container status lookups.
//
// The cache is advisory only: it exists so that the dispatcher can decide
// between `compose run` and `compose exec` without issuing a status query per
// decision, and every failure degrades to "no status" rather than an error.
// Entries expire after a short TTL so repeated dispatches within one logical
// operation reuse a single external call.
package status

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"davit-cli/internal/testutil"
)

// DefaultTTL is how long a status record stays fresh.
const DefaultTTL = 2 * time.Second

type (
	// Record is one service's observed container status.
	Record struct {
		// State is the container state as reported by the backend.
		State string
		// Project is the compose project that owns the container.
		Project string
	}

	// Querier performs one live status lookup for a service. Implemented by
	// the compose client; mocked in tests.
	Querier interface {
		QueryStatus(ctx context.Context, service string) (*Record, error)
	}

	// Option configures a Cache.
	Option func(*Cache)

	// Cache memoizes Querier results per service for a fixed TTL.
	// Dispatch flow is single-threaded, but the cache takes a mutex anyway so
	// the package stays safe when embedded as a library with concurrent
	// callers.
	Cache struct {
		querier Querier
		ttl     time.Duration
		clock   testutil.Clock

		mu      sync.Mutex
		entries map[string]entry
	}

	entry struct {
		record    *Record
		fetchedAt time.Time
	}
)

// Running reports whether the record's state is "running", case-insensitively.
func (r *Record) Running() bool {
	return r != nil && strings.EqualFold(r.State, "running")
}

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces the time source, for tests.
func WithClock(clock testutil.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// NewCache creates a cache over the given querier.
func NewCache(querier Querier, opts ...Option) *Cache {
	c := &Cache{
		querier: querier,
		ttl:     DefaultTTL,
		clock:   testutil.RealClock{},
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusFor returns the cached status record for service, querying the
// backend on a miss or an expired entry. A nil record means no usable status
// (no container, query failure, malformed payload); callers must treat that
// as "not running", never as an error.
func (c *Cache) StatusFor(ctx context.Context, service string) *Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[service]; ok && c.clock.Since(e.fetchedAt) < c.ttl {
		return e.record
	}

	record, err := c.querier.QueryStatus(ctx, service)
	if err != nil {
		slog.Warn("container status query failed, assuming not running",
			"service", service, "error", err)
		record = nil
	}

	c.entries[service] = entry{record: record, fetchedAt: c.clock.Now()}
	return record
}

// Clear drops all cached entries. Used by tests and by repeated provisioning
// runs that need fresh observations.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
