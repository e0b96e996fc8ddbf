package suppression

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go-item-recovery/internal/item"
	"go-item-recovery/internal/model"
)

// HoldingsChecker answers whether the user still holds an item that is
// structurally identical to the destroyed one. Used by the conservation
// gate for advanced enchantment items only.
type HoldingsChecker interface {
	Contains(ctx context.Context, userID string, snap model.ItemSnapshot) (bool, error)
}

// Recorder receives accepted destruction events. In production this is
// the ledger append plus the mirror write.
type Recorder interface {
	Record(ctx context.Context, userID string, snap model.ItemSnapshot, wctx model.WorldContext)
}

// Config carries the tunables of the suppression engine. Zero values
// fall back to the documented defaults.
type Config struct {
	Whitelist        []string
	AdvancedTag      string
	CostLoreFormat   string
	ReplayWindow     time.Duration // same-fingerprint replay guard, default 5s
	HashWindow       time.Duration // identity-hash duplicate window, default 10s
	SettleDelay      time.Duration // delay before the conservation gate, default 100ms
	RepairOnRecovery bool
}

func (c Config) withDefaults() Config {
	if c.ReplayWindow <= 0 {
		c.ReplayWindow = 5 * time.Second
	}
	if c.HashWindow <= 0 {
		c.HashWindow = 10 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 100 * time.Millisecond
	}
	return c
}

// Engine decides whether a reported destruction event is accepted into
// the ledger or silently rejected as a duplicate. State is per user and
// purely in memory; distinct users never contend on a shared lock.
type Engine struct {
	cfg      Config
	clock    Clock
	sched    Scheduler
	holdings HoldingsChecker
	recorder Recorder

	mu    sync.Mutex
	users map[string]*userState
}

type userState struct {
	mu              sync.Mutex
	pendingWear     *model.ItemSnapshot
	lastFingerprint string
	lastAcceptedAt  time.Time
	hashes          map[string]struct{}
}

func NewEngine(cfg Config, holdings HoldingsChecker, recorder Recorder) *Engine {
	return &Engine{
		cfg:      cfg.withDefaults(),
		clock:    systemClock{},
		sched:    timerScheduler{},
		holdings: holdings,
		recorder: recorder,
		users:    make(map[string]*userState),
	}
}

// NewEngineWithTimers is NewEngine with an injectable clock and
// scheduler, used by tests to drive the windows deterministically.
func NewEngineWithTimers(cfg Config, holdings HoldingsChecker, recorder Recorder, clock Clock, sched Scheduler) *Engine {
	e := NewEngine(cfg, holdings, recorder)
	e.clock = clock
	e.sched = sched
	return e
}

// ReportWear records a pre-destruction snapshot of an item that is about
// to break. When the final destruction event arrives it substitutes this
// payload, which the host captured before any metadata was cleared.
func (e *Engine) ReportWear(userID string, snap model.ItemSnapshot) {
	state := e.state(userID)
	clone := snap.Clone()

	state.mu.Lock()
	state.pendingWear = &clone
	state.mu.Unlock()
}

// ReportDestroyed runs the acceptance gates for a destruction event.
// Rejections are silent by design: the destruction already happened on
// the host side whether or not it is recorded here.
func (e *Engine) ReportDestroyed(userID string, snap model.ItemSnapshot, wctx model.WorldContext) {
	state := e.peek(userID)

	if state != nil {
		state.mu.Lock()
		if state.pendingWear != nil {
			snap = *state.pendingWear
			state.pendingWear = nil
		}
		state.mu.Unlock()
	}

	if !item.Whitelisted(snap, e.cfg.Whitelist) {
		return
	}

	replayed := false
	if state != nil {
		now := e.clock.Now()
		fp := item.Fingerprint(snap, e.cfg.CostLoreFormat)

		state.mu.Lock()
		replayed = state.lastFingerprint == fp && now.Sub(state.lastAcceptedAt) <= e.cfg.ReplayWindow
		state.mu.Unlock()
	}

	if replayed {
		slog.Warn("suppressed replayed destruction event", "user_id", userID, "item_type", snap.Type)
		return
	}

	// The conservation and window gates run after a short settle delay
	// so the host's own state can catch up before holdings are
	// inspected. No lock is held across the delay.
	clone := snap.Clone()
	e.sched.AfterFunc(e.cfg.SettleDelay, func() {
		e.settle(userID, clone, wctx)
	})
}

func (e *Engine) settle(userID string, snap model.ItemSnapshot, wctx model.WorldContext) {
	ctx := context.Background()

	if item.HasAdvancedTag(snap, e.cfg.AdvancedTag) {
		held, err := e.holdings.Contains(ctx, userID, snap)
		if err != nil {
			slog.Warn("holdings check failed, conservation gate skipped", "user_id", userID, "error", err)
		} else if held {
			slog.Warn("duplication attempt suppressed, item still held", "user_id", userID, "item_type", snap.Type)
			return
		}
	}

	now := e.clock.Now()
	hash := item.IdentityHash(snap, now, e.cfg.CostLoreFormat)
	state := e.state(userID)

	state.mu.Lock()
	if state.hashes != nil {
		if _, seen := state.hashes[hash]; seen {
			state.mu.Unlock()
			slog.Warn("suppressed duplicate destruction event", "user_id", userID, "item_type", snap.Type)
			return
		}
	}

	if e.cfg.RepairOnRecovery {
		snap.Damage = 0
	}

	state.lastFingerprint = item.Fingerprint(snap, e.cfg.CostLoreFormat)
	state.lastAcceptedAt = now
	if state.hashes == nil {
		state.hashes = make(map[string]struct{})
	}
	state.hashes[hash] = struct{}{}
	state.mu.Unlock()

	e.sched.AfterFunc(e.cfg.HashWindow, func() {
		e.evict(userID, hash)
	})

	e.recorder.Record(ctx, userID, snap, wctx)
}

// evict removes an expired window hash. Eviction is timer driven so it
// happens even when the user produces no further events, and the user
// state is dropped once nothing bounds memory anymore.
func (e *Engine) evict(userID string, hash string) {
	e.mu.Lock()
	state, ok := e.users[userID]
	if !ok {
		e.mu.Unlock()
		return
	}

	state.mu.Lock()
	delete(state.hashes, hash)
	empty := len(state.hashes) == 0
	if empty {
		state.hashes = nil
	}
	idle := empty && state.pendingWear == nil &&
		e.clock.Now().Sub(state.lastAcceptedAt) > e.cfg.ReplayWindow
	state.mu.Unlock()

	if idle {
		delete(e.users, userID)
	}
	e.mu.Unlock()
}

func (e *Engine) peek(userID string) *userState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.users[userID]
}

func (e *Engine) state(userID string) *userState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.users[userID]
	if !ok {
		state = &userState{}
		e.users[userID] = state
	}
	return state
}

// TrackedUsers reports how many users currently hold suppression state.
func (e *Engine) TrackedUsers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.users)
}
