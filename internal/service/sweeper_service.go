package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-item-recovery/internal/event"
)

// SweepStore is the subset of ledger persistence the sweeper needs.
type SweepStore interface {
	Users(ctx context.Context) ([]string, error)
	RemoveOlderThan(ctx context.Context, userID string, cutoffMillis int64) (int64, error)
}

// MirrorPruner ages out mirror rows with the same retention policy.
type MirrorPruner interface {
	PruneOlderThan(ctx context.Context, cutoffMillis int64) (int64, error)
}

// SweeperService removes ledger entries older than the configured
// retention age. Each user's batch commits independently: one user's
// failure never aborts the rest of the sweep.
type SweeperService struct {
	store         SweepStore
	mirror        MirrorPruner
	bus           event.Bus
	retentionDays int
	initialDelay  time.Duration
	interval      time.Duration
	now           func() time.Time
}

func NewSweeperService(store SweepStore, mirror MirrorPruner, bus event.Bus, retentionDays int, initialDelay time.Duration, interval time.Duration) *SweeperService {
	if initialDelay <= 0 {
		initialDelay = time.Hour
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &SweeperService{
		store:         store,
		mirror:        mirror,
		bus:           bus,
		retentionDays: retentionDays,
		initialDelay:  initialDelay,
		interval:      interval,
		now:           time.Now,
	}
}

// Start runs the sweep loop until the context is cancelled. A
// non-positive retention age disables sweeping entirely.
func (s *SweeperService) Start(ctx context.Context) {
	if s.retentionDays <= 0 {
		slog.Info("retention sweeping disabled")
		return
	}

	slog.Info("retention sweeper scheduled",
		"retention_days", s.retentionDays, "initial_delay", s.initialDelay, "interval", s.interval)

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.initialDelay):
	}

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep removes aged entries for every known user and prunes the
// mirror. It returns how many ledger entries were removed.
func (s *SweeperService) Sweep(ctx context.Context) int64 {
	if s.retentionDays <= 0 {
		return 0
	}

	cutoff := s.now().Add(-time.Duration(s.retentionDays) * 24 * time.Hour).UnixMilli()

	users, err := s.store.Users(ctx)
	if err != nil {
		slog.Error("sweep aborted, cannot list users", "error", err)
		return 0
	}

	var removed int64
	for _, userID := range users {
		count, err := s.store.RemoveOlderThan(ctx, userID, cutoff)
		if err != nil {
			slog.Error("sweep failed for user", "user_id", userID, "error", err)
			continue
		}
		removed += count
	}

	if s.mirror != nil {
		if pruned, err := s.mirror.PruneOlderThan(ctx, cutoff); err != nil {
			slog.Warn("mirror prune failed", "error", err)
		} else if pruned > 0 {
			slog.Info("mirror pruned", "rows", pruned)
		}
	}

	if removed > 0 {
		slog.Info("retention sweep completed", "entries_removed", removed, "users", len(users))
	}

	if s.bus != nil {
		s.bus.Publish(event.Event{
			ID:        uuid.NewString(),
			Type:      event.TypeSweepCompleted,
			Payload:   map[string]int64{"entries_removed": removed},
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		})
	}

	return removed
}
