package suppression

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-item-recovery/internal/model"
)

// manualClock advances only when told to.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// manualScheduler queues deferred work keyed by due time and runs it
// when the test fires the clock forward.
type manualScheduler struct {
	clock *manualClock
	mu    sync.Mutex
	tasks []scheduledTask
}

type scheduledTask struct {
	due time.Time
	fn  func()
}

func newManualScheduler(clock *manualClock) *manualScheduler {
	return &manualScheduler{clock: clock}
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) {
	s.mu.Lock()
	s.tasks = append(s.tasks, scheduledTask{due: s.clock.Now().Add(d), fn: fn})
	s.mu.Unlock()
}

// RunDue executes every task whose due time has passed.
func (s *manualScheduler) RunDue() {
	for {
		s.mu.Lock()
		var next *scheduledTask
		idx := -1
		for i, task := range s.tasks {
			if !task.due.After(s.clock.Now()) {
				next = &s.tasks[i]
				idx = i
				break
			}
		}
		if next == nil {
			s.mu.Unlock()
			return
		}
		fn := next.fn
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
		s.mu.Unlock()
		fn()
	}
}

type recordedEvent struct {
	userID string
	snap   model.ItemSnapshot
	wctx   model.WorldContext
}

type captureRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *captureRecorder) Record(_ context.Context, userID string, snap model.ItemSnapshot, wctx model.WorldContext) {
	r.mu.Lock()
	r.events = append(r.events, recordedEvent{userID: userID, snap: snap, wctx: wctx})
	r.mu.Unlock()
}

func (r *captureRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type stubHoldings struct {
	contains bool
	err      error
	calls    int
}

func (h *stubHoldings) Contains(context.Context, string, model.ItemSnapshot) (bool, error) {
	h.calls++
	return h.contains, h.err
}

func engineConfig() Config {
	return Config{
		Whitelist:      []string{"DIAMOND_PICKAXE", "DIAMOND_SWORD"},
		AdvancedTag:    "advancedenchantments:ae_enchantment",
		CostLoreFormat: "Restoration cost: {cost}",
	}
}

func newTestEngine(cfg Config, holdings HoldingsChecker) (*Engine, *manualClock, *manualScheduler, *captureRecorder) {
	clock := newManualClock()
	sched := newManualScheduler(clock)
	rec := &captureRecorder{}
	return NewEngineWithTimers(cfg, holdings, rec, clock, sched), clock, sched, rec
}

func destroyed() model.ItemSnapshot {
	return model.ItemSnapshot{
		Type:         "DIAMOND_PICKAXE",
		Quantity:     1,
		Name:         "Tunnel Bore",
		Enchantments: map[string]int{"unbreaking": 2},
		Damage:       1561,
	}
}

func TestEngine_AcceptsWhitelistedItem(t *testing.T) {
	engine, clock, sched, rec := newTestEngine(engineConfig(), &stubHoldings{})

	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{World: "overworld"})
	clock.Advance(time.Second)
	sched.RunDue()

	require.Equal(t, 1, rec.count())
	assert.Equal(t, "user-1", rec.events[0].userID)
	assert.Equal(t, "overworld", rec.events[0].wctx.World)
}

func TestEngine_RejectsNonWhitelistedSilently(t *testing.T) {
	engine, clock, sched, rec := newTestEngine(engineConfig(), &stubHoldings{})

	snap := destroyed()
	snap.Type = "DIRT"
	engine.ReportDestroyed("user-1", snap, model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()

	assert.Zero(t, rec.count())
	assert.Zero(t, engine.TrackedUsers(), "rejected events must not leave suppression state behind")
}

func TestEngine_ReplayWithinFiveSecondsRejected(t *testing.T) {
	engine, clock, sched, rec := newTestEngine(engineConfig(), &stubHoldings{})

	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()
	require.Equal(t, 1, rec.count())

	// Duplicate notification of the same physical event, 3s later.
	clock.Advance(3 * time.Second)
	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()

	assert.Equal(t, 1, rec.count())
}

func TestEngine_ReplayGateExpiresAfterWindow(t *testing.T) {
	engine, clock, sched, rec := newTestEngine(engineConfig(), &stubHoldings{})

	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()
	require.Equal(t, 1, rec.count())

	// Genuine second destruction, well past both windows.
	clock.Advance(11 * time.Second)
	sched.RunDue() // hash eviction fires
	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()

	assert.Equal(t, 2, rec.count())
}

func TestEngine_WindowGateRejectsDuplicatesSettlingTogether(t *testing.T) {
	engine, clock, sched, rec := newTestEngine(engineConfig(), &stubHoldings{})

	// Two notifications of the same destruction arrive before either
	// settles, so the replay gate has no accepted fingerprint yet and
	// both reach the hash window.
	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{World: "overworld"})
	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{World: "overworld"})
	clock.Advance(time.Second)
	sched.RunDue()

	assert.Equal(t, 1, rec.count())
}

func TestEngine_ReplayGateIsPerUser(t *testing.T) {
	engine, clock, sched, rec := newTestEngine(engineConfig(), &stubHoldings{})

	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{})
	engine.ReportDestroyed("user-2", destroyed(), model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()

	assert.Equal(t, 2, rec.count())
}

func TestEngine_ConservationGateRejectsHeldAdvancedItem(t *testing.T) {
	holdings := &stubHoldings{contains: true}
	engine, clock, sched, rec := newTestEngine(engineConfig(), holdings)

	snap := destroyed()
	snap.CustomData = map[string]string{"advancedenchantments:ae_enchantment:lifesteal": "3"}
	engine.ReportDestroyed("user-1", snap, model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()

	assert.Zero(t, rec.count())
	assert.Equal(t, 1, holdings.calls)
}

func TestEngine_ConservationGateSkippedForPlainItems(t *testing.T) {
	holdings := &stubHoldings{contains: true}
	engine, clock, sched, rec := newTestEngine(engineConfig(), holdings)

	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()

	assert.Equal(t, 1, rec.count())
	assert.Zero(t, holdings.calls)
}

func TestEngine_WindowHashEvictionDropsUserState(t *testing.T) {
	engine, clock, sched, rec := newTestEngine(engineConfig(), &stubHoldings{})

	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()
	require.Equal(t, 1, rec.count())
	assert.Equal(t, 1, engine.TrackedUsers())

	clock.Advance(11 * time.Second)
	sched.RunDue()

	assert.Zero(t, engine.TrackedUsers())
}

func TestEngine_WearSnapshotSubstitutesDestructionPayload(t *testing.T) {
	engine, clock, sched, rec := newTestEngine(engineConfig(), &stubHoldings{})

	rich := destroyed()
	rich.Lore = []string{"Forged in the deep"}
	engine.ReportWear("user-1", rich)

	// The final event arrives with its metadata already cleared.
	stripped := model.ItemSnapshot{Type: "DIAMOND_PICKAXE", Quantity: 1}
	engine.ReportDestroyed("user-1", stripped, model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()

	require.Equal(t, 1, rec.count())
	assert.Equal(t, []string{"Forged in the deep"}, rec.events[0].snap.Lore)
}

func TestEngine_RepairOnRecoveryClearsDamage(t *testing.T) {
	cfg := engineConfig()
	cfg.RepairOnRecovery = true
	engine, clock, sched, rec := newTestEngine(cfg, &stubHoldings{})

	engine.ReportDestroyed("user-1", destroyed(), model.WorldContext{})
	clock.Advance(time.Second)
	sched.RunDue()

	require.Equal(t, 1, rec.count())
	assert.Zero(t, rec.events[0].snap.Damage)
}
