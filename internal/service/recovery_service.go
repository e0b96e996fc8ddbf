package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-item-recovery/internal/event"
	"go-item-recovery/internal/item"
	"go-item-recovery/internal/model"
)

// BalanceService is the external wallet collaborator. A debit error
// means the debit was not applied; Credit exists for the compensation
// path only.
type BalanceService interface {
	Has(ctx context.Context, userID string, amount int) (bool, error)
	Debit(ctx context.Context, userID string, amount int) error
	Credit(ctx context.Context, userID string, amount int) error
}

// HoldingsService is the external inventory collaborator.
type HoldingsService interface {
	HasCapacity(ctx context.Context, userID string) (bool, error)
	Deliver(ctx context.Context, userID string, snap model.ItemSnapshot) error
	Contains(ctx context.Context, userID string, snap model.ItemSnapshot) (bool, error)
}

// RecoveryEventSink records restore/delete actions for auditing.
type RecoveryEventSink interface {
	Insert(ctx context.Context, ev model.RecoveryEvent) error
}

// RecoveryService coordinates restorations and deletions against the
// ledger and the external balance/holdings collaborators, enforcing
// at-most-once debit per restoration.
//
// Failure policy after a successful debit: compensate, don't retry. If
// the ledger removal or the delivery fails, the entry is reinstated
// and the debit credited back. A failed compensation is the one
// condition logged at error level with an alert marker.
type RecoveryService struct {
	ledger     *LedgerService
	calculator *item.Calculator
	balance    BalanceService
	holdings   HoldingsService
	events     RecoveryEventSink
	bus        event.Bus
	costFormat string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRecoveryService(
	ledger *LedgerService,
	calculator *item.Calculator,
	balance BalanceService,
	holdings HoldingsService,
	events RecoveryEventSink,
	bus event.Bus,
	costFormat string,
) *RecoveryService {
	return &RecoveryService{
		ledger:     ledger,
		calculator: calculator,
		balance:    balance,
		holdings:   holdings,
		events:     events,
		bus:        bus,
		costFormat: costFormat,
		locks:      make(map[string]*sync.Mutex),
	}
}

// ListRecoverable returns the user's entries as display items with the
// restoration cost annotated into the lore, ordered by slot key.
func (s *RecoveryService) ListRecoverable(ctx context.Context, userID string, page int, limit int) ([]model.RecoverableItem, model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 45
	}

	entries, err := s.ledger.List(ctx, userID)
	if err != nil {
		return nil, model.Meta{}, err
	}

	items := make([]model.RecoverableItem, 0, len(entries))
	for _, entry := range entries {
		cost := s.calculator.RestorationCost(entry.Item)
		items = append(items, model.RecoverableItem{
			Item:        item.AnnotateCost(entry.Item, cost, s.costFormat),
			Fingerprint: s.ledger.Fingerprint(entry.Item),
			Cost:        cost,
			SlotKey:     entry.SlotKey,
			Blacklisted: entry.Blacklisted,
		})
	}

	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	totalPages := (total + limit - 1) / limit
	meta := model.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
	return items[start:end], meta, nil
}

// RestoreReceipt reports a completed restoration.
type RestoreReceipt struct {
	Entry model.RecoveryEntry `json:"entry"`
	Cost  int                 `json:"cost"`
}

// Restore reclaims an entry: checks eligibility, debits the balance,
// removes the entry and delivers a lore-clean copy to the user's
// holdings, in that order. A second call for the same fingerprint
// reports ErrEntryNotFound; the debit happens exactly once.
func (s *RecoveryService) Restore(ctx context.Context, userID string, fingerprint string) (RestoreReceipt, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	entry, err := s.ledger.FindByFingerprint(ctx, userID, fingerprint)
	if err != nil {
		return RestoreReceipt{}, err
	}

	if entry.Blacklisted {
		return RestoreReceipt{}, model.ErrBlacklisted
	}

	quantity := entry.Item.Quantity
	if quantity < 1 {
		quantity = 1
	}
	cost := s.calculator.RestorationCost(entry.Item) * quantity

	hasRoom, err := s.holdings.HasCapacity(ctx, userID)
	if err != nil {
		return RestoreReceipt{}, fmt.Errorf("%w: capacity check: %v", model.ErrHoldingsService, err)
	}
	if !hasRoom {
		return RestoreReceipt{}, model.ErrCapacityExceeded
	}

	enough, err := s.balance.Has(ctx, userID, cost)
	if err != nil {
		return RestoreReceipt{}, fmt.Errorf("%w: balance check: %v", model.ErrBalanceService, err)
	}
	if !enough {
		return RestoreReceipt{}, model.ErrInsufficientFunds
	}

	if err := s.balance.Debit(ctx, userID, cost); err != nil {
		// Debit not applied; nothing to undo.
		return RestoreReceipt{}, fmt.Errorf("%w: debit: %v", model.ErrBalanceService, err)
	}

	removed, err := s.ledger.RemoveByFingerprint(ctx, userID, fingerprint)
	if err != nil {
		s.compensate(ctx, userID, cost, nil, err)
		return RestoreReceipt{}, err
	}

	delivered := item.StripCostLore(removed.Item, s.costFormat)
	if err := s.holdings.Deliver(ctx, userID, delivered); err != nil {
		s.compensate(ctx, userID, cost, &removed, err)
		return RestoreReceipt{}, fmt.Errorf("%w: deliver: %v", model.ErrHoldingsService, err)
	}

	s.logAction(ctx, "restored", userID, removed.Item, cost)
	s.publish(event.TypeItemRestored, userID, RestoreReceipt{Entry: removed, Cost: cost})

	slog.Info("item restored", "user_id", userID, "item_type", removed.Item.Type,
		"quantity", quantity, "cost", cost, "slot_key", removed.SlotKey)
	return RestoreReceipt{Entry: removed, Cost: cost}, nil
}

// Delete removes an entry without restoring it. Blacklisted entries can
// always be deleted.
func (s *RecoveryService) Delete(ctx context.Context, userID string, fingerprint string) (model.RecoveryEntry, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	removed, err := s.ledger.RemoveByFingerprint(ctx, userID, fingerprint)
	if err != nil {
		return model.RecoveryEntry{}, err
	}

	s.logAction(ctx, "deleted", userID, removed.Item, 0)
	s.publish(event.TypeItemDeleted, userID, removed)

	slog.Info("item deleted from ledger", "user_id", userID,
		"item_type", removed.Item.Type, "slot_key", removed.SlotKey)
	return removed, nil
}

// compensate undoes a debit whose restoration could not complete. The
// removed entry, when present, is reinstated first so the user keeps
// either the currency or the claim, never losing both.
func (s *RecoveryService) compensate(ctx context.Context, userID string, cost int, removed *model.RecoveryEntry, cause error) {
	var compErr error
	if removed != nil {
		compErr = s.ledger.Reinstate(ctx, userID, *removed)
	}

	creditErr := s.balance.Credit(ctx, userID, cost)
	if creditErr == nil && compErr == nil {
		slog.Warn("restoration rolled back after debit", "user_id", userID, "cost", cost, "cause", cause)
		return
	}

	// The user may be debited without the item or the ledger entry.
	// This must never be swallowed silently.
	slog.Error("restoration compensation failed",
		"alert", true,
		"user_id", userID,
		"cost", cost,
		"cause", cause,
		"credit_error", creditErr,
		"reinstate_error", compErr)
}

func (s *RecoveryService) logAction(ctx context.Context, action string, userID string, snap model.ItemSnapshot, cost int) {
	if s.events == nil {
		return
	}

	ev := model.RecoveryEvent{
		ID:         uuid.NewString(),
		Action:     action,
		UserID:     userID,
		ItemType:   snap.Type,
		ItemName:   snap.DisplayName(),
		Quantity:   snap.Quantity,
		Cost:       cost,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.events.Insert(ctx, ev); err != nil {
		slog.Error("failed to record recovery event", "action", action, "user_id", userID, "error", err)
	}
}

func (s *RecoveryService) publish(t event.Type, userID string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		UserID:    userID,
	})
}

func (s *RecoveryService) lockUser(userID string) func() {
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

// IsUserFacing reports whether an error maps to a user-visible result
// rather than an internal failure.
func IsUserFacing(err error) bool {
	return errors.Is(err, model.ErrEntryNotFound) ||
		errors.Is(err, model.ErrBlacklisted) ||
		errors.Is(err, model.ErrCapacityExceeded) ||
		errors.Is(err, model.ErrInsufficientFunds)
}
