package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-item-recovery/internal/model"
)

type flakySweepStore struct {
	*memoryStore
	failUser string
}

func (f *flakySweepStore) RemoveOlderThan(ctx context.Context, userID string, cutoffMillis int64) (int64, error) {
	if userID == f.failUser {
		return 0, errors.New("connection reset")
	}
	return f.memoryStore.RemoveOlderThan(ctx, userID, cutoffMillis)
}

type countingPruner struct {
	cutoff int64
	calls  int
}

func (p *countingPruner) PruneOlderThan(_ context.Context, cutoffMillis int64) (int64, error) {
	p.calls++
	p.cutoff = cutoffMillis
	return 0, nil
}

func seedEntry(t *testing.T, store *memoryStore, userID string, slot int, age time.Duration, now time.Time) {
	t.Helper()
	err := store.Put(context.Background(), userID, model.RecoveryEntry{
		SlotKey:   slot,
		Item:      sword("Aged"),
		CreatedAt: now.Add(-age).UnixMilli(),
	})
	require.NoError(t, err)
}

func TestSweep_RemovesOnlyEntriesPastRetention(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	pruner := &countingPruner{}

	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	seedEntry(t, store, "user-1", 0, 31*24*time.Hour, now)
	seedEntry(t, store, "user-1", 1, 29*24*time.Hour, now)
	seedEntry(t, store, "user-2", 0, 40*24*time.Hour, now)

	sweeper := NewSweeperService(store, pruner, nil, 30, time.Hour, 24*time.Hour)
	sweeper.now = func() time.Time { return now }

	removed := sweeper.Sweep(ctx)
	assert.Equal(t, int64(2), removed)

	remaining, err := store.Entries(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, 1, remaining[0].SlotKey)

	remaining, err = store.Entries(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.Equal(t, 1, pruner.calls)
	assert.Equal(t, now.Add(-30*24*time.Hour).UnixMilli(), pruner.cutoff)
}

func TestSweep_UserFailureDoesNotAbortOthers(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	seedEntry(t, store, "user-1", 0, 31*24*time.Hour, now)
	seedEntry(t, store, "user-2", 0, 31*24*time.Hour, now)

	sweeper := NewSweeperService(&flakySweepStore{memoryStore: store, failUser: "user-1"}, nil, nil, 30, time.Hour, 24*time.Hour)
	sweeper.now = func() time.Time { return now }

	removed := sweeper.Sweep(ctx)
	assert.Equal(t, int64(1), removed)

	remaining, err := store.Entries(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, remaining, "the healthy user must still be swept")
}

func TestSweep_DisabledWhenRetentionNonPositive(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	now := time.Now()
	seedEntry(t, store, "user-1", 0, 365*24*time.Hour, now)

	sweeper := NewSweeperService(store, nil, nil, 0, time.Hour, 24*time.Hour)
	assert.Equal(t, int64(0), sweeper.Sweep(ctx))

	remaining, err := store.Entries(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
