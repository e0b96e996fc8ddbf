package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-item-recovery/internal/event"
	"go-item-recovery/internal/model"
)

// MirrorSink receives accepted destruction events for the optional
// remote mirror. Mirror failures never block the ledger write.
type MirrorSink interface {
	Insert(ctx context.Context, rec model.MirrorRecord) error
}

// DestructionRecorder is the sink behind the suppression engine: an
// accepted event becomes a ledger entry, a mirror row and a bus event.
type DestructionRecorder struct {
	ledger *LedgerService
	mirror MirrorSink
	bus    event.Bus
}

func NewDestructionRecorder(ledger *LedgerService, mirror MirrorSink, bus event.Bus) *DestructionRecorder {
	return &DestructionRecorder{ledger: ledger, mirror: mirror, bus: bus}
}

func (r *DestructionRecorder) Record(ctx context.Context, userID string, snap model.ItemSnapshot, wctx model.WorldContext) {
	entry, appended, err := r.ledger.Append(ctx, userID, snap)
	if err != nil {
		slog.Error("failed to append recovery entry", "user_id", userID, "item_type", snap.Type, "error", err)
		return
	}
	if !appended {
		return
	}

	if r.mirror != nil {
		rec := model.MirrorRecord{
			UserID:     userID,
			Item:       snap,
			BreakTime:  entry.CreatedAt,
			ServerName: wctx.ServerName,
			World:      wctx.World,
			X:          wctx.X,
			Y:          wctx.Y,
			Z:          wctx.Z,
		}
		if err := r.mirror.Insert(ctx, rec); err != nil {
			slog.Warn("failed to mirror destruction event", "user_id", userID, "error", err)
		}
	}

	if r.bus != nil {
		r.bus.Publish(event.Event{
			ID:        uuid.NewString(),
			Type:      event.TypeItemRecorded,
			Payload:   entry,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			UserID:    userID,
		})
	}

	slog.Info("destroyed item recorded", "user_id", userID,
		"item_type", snap.Type, "slot_key", entry.SlotKey, "blacklisted", entry.Blacklisted)
}
