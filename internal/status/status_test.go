// SPDX-License-Identifier: MPL-2.0

package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"davit-cli/internal/testutil"
)

// fakeQuerier counts lookups and returns a fixed record or error.
type fakeQuerier struct {
	calls  int
	record *Record
	err    error
}

func (q *fakeQuerier) QueryStatus(_ context.Context, _ string) (*Record, error) {
	q.calls++
	return q.record, q.err
}

func TestRecord_Running(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record *Record
		want   bool
	}{
		{"nil record", nil, false},
		{"running", &Record{State: "running"}, true},
		{"case insensitive", &Record{State: "Running"}, true},
		{"exited", &Record{State: "exited"}, false},
		{"empty state", &Record{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.record.Running(); got != tt.want {
				t.Errorf("Running() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCache_MemoizesWithinTTL(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{record: &Record{State: "running", Project: "myapp"}}
	clock := testutil.NewFakeClock(time.Time{})
	c := NewCache(q, WithClock(clock))

	ctx := context.Background()
	first := c.StatusFor(ctx, "app")
	second := c.StatusFor(ctx, "app")

	if q.calls != 1 {
		t.Errorf("querier calls = %d, want 1 within TTL", q.calls)
	}
	if !first.Running() || !second.Running() {
		t.Error("both lookups should see the running record")
	}
	if second.Project != "myapp" {
		t.Errorf("Project = %q, want %q", second.Project, "myapp")
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{record: &Record{State: "running"}}
	clock := testutil.NewFakeClock(time.Time{})
	c := NewCache(q, WithClock(clock), WithTTL(2*time.Second))

	ctx := context.Background()
	c.StatusFor(ctx, "app")
	clock.Advance(3 * time.Second)
	c.StatusFor(ctx, "app")

	if q.calls != 2 {
		t.Errorf("querier calls = %d, want 2 after expiry", q.calls)
	}
}

func TestCache_SeparateEntriesPerService(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{record: &Record{State: "running"}}
	c := NewCache(q, WithClock(testutil.NewFakeClock(time.Time{})))

	ctx := context.Background()
	c.StatusFor(ctx, "app")
	c.StatusFor(ctx, "db")

	if q.calls != 2 {
		t.Errorf("querier calls = %d, want one per service", q.calls)
	}
}

func TestCache_QueryFailureDegradesToNil(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{err: errors.New("daemon unreachable")}
	c := NewCache(q, WithClock(testutil.NewFakeClock(time.Time{})))

	ctx := context.Background()
	if rec := c.StatusFor(ctx, "app"); rec != nil {
		t.Errorf("StatusFor() = %+v, want nil on failure", rec)
	}

	// The failure is negatively cached for the TTL.
	c.StatusFor(ctx, "app")
	if q.calls != 1 {
		t.Errorf("querier calls = %d, want failure cached within TTL", q.calls)
	}
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{record: &Record{State: "running"}}
	c := NewCache(q, WithClock(testutil.NewFakeClock(time.Time{})))

	ctx := context.Background()
	c.StatusFor(ctx, "app")
	c.Clear()
	c.StatusFor(ctx, "app")

	if q.calls != 2 {
		t.Errorf("querier calls = %d, want fresh query after Clear", q.calls)
	}
}

func TestWithTTL_IgnoresNonPositive(t *testing.T) {
	t.Parallel()

	c := NewCache(&fakeQuerier{}, WithTTL(0))
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want default %v", c.ttl, DefaultTTL)
	}
}
