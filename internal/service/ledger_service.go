package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-item-recovery/internal/item"
	"go-item-recovery/internal/model"
)

// LedgerStore is the persistence contract for recovery entries. All
// writes are synchronous; a store error means the operation is not
// committed.
type LedgerStore interface {
	Entries(ctx context.Context, userID string) ([]model.RecoveryEntry, error)
	Put(ctx context.Context, userID string, entry model.RecoveryEntry) error
	Remove(ctx context.Context, userID string, slotKey int) error
}

// LedgerConfig carries the append-time classification and dedupe rules.
type LedgerConfig struct {
	AdvancedTag         string
	CostLoreFormat      string
	BlacklistLore       []string
	BlacklistCustomData []string
	// DuplicateWindow is the durable dedupe window for advanced
	// enchantment items, default 30s.
	DuplicateWindow time.Duration
}

// LedgerService owns the per-user recovery ledgers: slot-key
// assignment, append-time deduplication and identity-based removal.
// Access within one user is serialized; distinct users proceed
// concurrently.
type LedgerService struct {
	store LedgerStore
	cfg   LedgerConfig
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedgerService(store LedgerStore, cfg LedgerConfig) *LedgerService {
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = 30 * time.Second
	}
	return &LedgerService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// Append stores a new entry for an accepted destruction event and
// returns it. The second return reports whether a new entry was
// actually created: an advanced enchantment item that duplicates an
// existing entry inside the duplicate window is suppressed and the
// existing entry is returned unchanged.
func (s *LedgerService) Append(ctx context.Context, userID string, snap model.ItemSnapshot) (model.RecoveryEntry, bool, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	entries, err := s.store.Entries(ctx, userID)
	if err != nil {
		return model.RecoveryEntry{}, false, err
	}

	advanced := item.HasAdvancedTag(snap, s.cfg.AdvancedTag)
	nowMillis := s.now().UnixMilli()

	if advanced {
		for _, existing := range entries {
			if !item.SameIgnoringDurability(existing.Item, snap, s.cfg.CostLoreFormat) {
				continue
			}
			if nowMillis-existing.CreatedAt <= s.cfg.DuplicateWindow.Milliseconds() {
				slog.Info("duplicate advanced item within window, keeping existing entry",
					"user_id", userID, "item_type", snap.Type, "slot_key", existing.SlotKey)
				return existing, false, nil
			}
		}
	} else {
		// The ledger keeps at most one entry per plain item identity:
		// an older entry for the same item is replaced by the new one.
		for _, existing := range entries {
			if item.SameIgnoringDurability(existing.Item, snap, s.cfg.CostLoreFormat) {
				if err := s.store.Remove(ctx, userID, existing.SlotKey); err != nil {
					return model.RecoveryEntry{}, false, err
				}
			}
		}
		entries, err = s.store.Entries(ctx, userID)
		if err != nil {
			return model.RecoveryEntry{}, false, err
		}
	}

	entry := model.RecoveryEntry{
		SlotKey:     smallestFreeSlot(entries),
		Item:        snap.Clone(),
		CreatedAt:   nowMillis,
		Blacklisted: item.Blacklisted(snap, s.cfg.BlacklistLore, s.cfg.BlacklistCustomData),
	}

	if err := s.store.Put(ctx, userID, entry); err != nil {
		return model.RecoveryEntry{}, false, err
	}
	return entry, true, nil
}

// List returns the user's entries ordered by slot key ascending. Each
// call re-reads current state.
func (s *LedgerService) List(ctx context.Context, userID string) ([]model.RecoveryEntry, error) {
	return s.store.Entries(ctx, userID)
}

// FindByFingerprint locates the first entry whose snapshot fingerprint
// matches, without removing it.
func (s *LedgerService) FindByFingerprint(ctx context.Context, userID string, fingerprint string) (model.RecoveryEntry, error) {
	entries, err := s.store.Entries(ctx, userID)
	if err != nil {
		return model.RecoveryEntry{}, err
	}

	for _, entry := range entries {
		if item.Fingerprint(entry.Item, s.cfg.CostLoreFormat) == fingerprint {
			return entry, nil
		}
	}
	return model.RecoveryEntry{}, model.ErrEntryNotFound
}

// RemoveByFingerprint removes and returns the first matching entry.
func (s *LedgerService) RemoveByFingerprint(ctx context.Context, userID string, fingerprint string) (model.RecoveryEntry, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	entry, err := s.FindByFingerprint(ctx, userID, fingerprint)
	if err != nil {
		return model.RecoveryEntry{}, err
	}

	if err := s.store.Remove(ctx, userID, entry.SlotKey); err != nil {
		return model.RecoveryEntry{}, err
	}
	return entry, nil
}

// Reinstate puts a previously removed entry back under its original
// slot key. Used by the restore coordinator to roll back a removal
// whose delivery failed.
func (s *LedgerService) Reinstate(ctx context.Context, userID string, entry model.RecoveryEntry) error {
	unlock := s.lockUser(userID)
	defer unlock()

	if err := s.store.Put(ctx, userID, entry); err != nil {
		return fmt.Errorf("reinstate slot %d: %w", entry.SlotKey, err)
	}
	return nil
}

// Fingerprint exposes the ledger's identity function so callers hash
// items exactly the way lookups do.
func (s *LedgerService) Fingerprint(snap model.ItemSnapshot) string {
	return item.Fingerprint(snap, s.cfg.CostLoreFormat)
}

func (s *LedgerService) lockUser(userID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// smallestFreeSlot implements the dense-packed slot policy: the
// smallest non-negative integer not in use, so vacated keys are reused.
func smallestFreeSlot(entries []model.RecoveryEntry) int {
	used := make(map[int]struct{}, len(entries))
	for _, entry := range entries {
		used[entry.SlotKey] = struct{}{}
	}

	slot := 0
	for {
		if _, taken := used[slot]; !taken {
			return slot
		}
		slot++
	}
}
