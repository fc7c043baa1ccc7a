// Package lock implements per-15-minute-slot distributed mutual exclusion:
// sector- and restaurant-scoped locks over the half-open interval
// [start, end), acquired fail-fast in sorted key order and released by a
// token-conditioned delete.
package lock

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrBusy is returned when any slot in the requested interval is already
// held by another acquirer. Callers map this to apperror.NoCapacity —
// the lock manager itself has no notion of HTTP status codes.
var ErrBusy = errors.New("lock: slot is busy")

// DefaultTTL bounds how long a lock survives a crashed holder.
const DefaultTTL = 30 * time.Second

// Step is the slot width locks are keyed on, matching timegrid.Step.
const Step = 15 * time.Minute

// Handle releases every slot acquired by a single Acquire* call. Release
// is idempotent-safe to call more than once; a second call is a no-op
// because by then no key still carries this handle's token.
type Handle interface {
	Release(ctx context.Context) error
}

// Manager is the distributed lock the reservation service acquires around
// its read-overlap/assign/write critical section.
type Manager interface {
	// AcquireSectorLocks locks every 15-minute slot s with start <= s < end
	// for sectorID.
	AcquireSectorLocks(ctx context.Context, sectorID string, start, end time.Time) (Handle, error)
	// AcquireRestaurantLocks is the restaurant-scoped analogue, used only
	// when the restaurant configures a guest cap.
	AcquireRestaurantLocks(ctx context.Context, restaurantID string, start, end time.Time) (Handle, error)
}

// slotKeys returns the sorted, de-duplicated list of canonical UTC ISO-8601
// slot keys an interval [start, end) spans, under the given prefix. Sorted
// order is what rules out deadlock between two acquirers whose intervals
// intersect.
func slotKeys(prefix, scopeID string, start, end time.Time) []string {
	start = start.UTC()
	end = end.UTC()

	first := start.Truncate(Step)
	keys := make([]string, 0, int(end.Sub(first)/Step)+1)
	for t := first; t.Before(end); t = t.Add(Step) {
		keys = append(keys, prefix+":"+scopeID+":slot:"+t.Format(time.RFC3339))
	}
	sort.Strings(keys)
	return keys
}

func sectorKeys(sectorID string, start, end time.Time) []string {
	return slotKeys("sector", sectorID, start, end)
}

func restaurantKeys(restaurantID string, start, end time.Time) []string {
	return slotKeys("restaurant", restaurantID, start, end)
}
