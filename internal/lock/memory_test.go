package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManager_AcquireRelease(t *testing.T) {
	m := NewMemoryManager(time.Minute)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	h, err := m.AcquireSectorLocks(ctx, "s1", start, end)
	require.NoError(t, err)
	require.NotNil(t, h)

	require.NoError(t, h.Release(ctx))

	h2, err := m.AcquireSectorLocks(ctx, "s1", start, end)
	require.NoError(t, err)
	require.NotNil(t, h2)
}

func TestMemoryManager_FailFastOnBusySlot(t *testing.T) {
	m := NewMemoryManager(time.Minute)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	h1, err := m.AcquireSectorLocks(ctx, "s1", start, end)
	require.NoError(t, err)
	defer h1.Release(ctx)

	// Overlapping interval must fail: shares slot keys with h1.
	_, err = m.AcquireSectorLocks(ctx, "s1", start.Add(15*time.Minute), end.Add(15*time.Minute))
	assert.ErrorIs(t, err, ErrBusy)
}

func TestMemoryManager_PartialAcquisitionRolledBackOnFailure(t *testing.T) {
	m := NewMemoryManager(time.Minute)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	// Hold only the second slot in [start, start+30m).
	secondSlot := start.Add(15 * time.Minute)
	h1, err := m.AcquireSectorLocks(ctx, "s1", secondSlot, secondSlot.Add(Step))
	require.NoError(t, err)
	defer h1.Release(ctx)

	// A wider acquisition covering both slots must fail entirely...
	_, err = m.AcquireSectorLocks(ctx, "s1", start, start.Add(30*time.Minute))
	require.ErrorIs(t, err, ErrBusy)

	// ...and must not have left the first slot locked behind.
	h2, err := m.AcquireSectorLocks(ctx, "s1", start, start.Add(Step))
	require.NoError(t, err)
	require.NoError(t, h2.Release(ctx))
}

func TestMemoryManager_TTLExpiryFreesSlot(t *testing.T) {
	mgr := NewMemoryManager(10 * time.Millisecond)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	end := start.Add(Step)

	_, err := mgr.AcquireSectorLocks(ctx, "s1", start, end)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	h2, err := mgr.AcquireSectorLocks(ctx, "s1", start, end)
	require.NoError(t, err)
	require.NoError(t, h2.Release(ctx))
}

func TestMemoryManager_RestaurantAndSectorScopesDoNotCollide(t *testing.T) {
	m := NewMemoryManager(time.Minute)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	end := start.Add(Step)

	h1, err := m.AcquireSectorLocks(ctx, "x1", start, end)
	require.NoError(t, err)
	defer h1.Release(ctx)

	h2, err := m.AcquireRestaurantLocks(ctx, "x1", start, end)
	require.NoError(t, err)
	defer h2.Release(ctx)
}
