package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-item-recovery/internal/model"
)

// MirrorRepository writes destruction events to the optional remote
// mirror table. It is write-often/read-seldom and never consulted by
// the restore/delete path.
type MirrorRepository struct {
	pool *pgxpool.Pool
}

func NewMirrorRepository(pool *pgxpool.Pool) *MirrorRepository {
	return &MirrorRepository{pool: pool}
}

func (r *MirrorRepository) Insert(ctx context.Context, rec model.MirrorRecord) error {
	itemJSON, err := json.Marshal(rec.Item)
	if err != nil {
		return fmt.Errorf("encode mirror item: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO broken_item_mirror (user_id, item, break_time, server_name, world, x, y, z)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.UserID, itemJSON, rec.BreakTime, rec.ServerName, rec.World, rec.X, rec.Y, rec.Z)
	if err != nil {
		return fmt.Errorf("insert mirror record: %w", err)
	}
	return nil
}

func (r *MirrorRepository) PruneOlderThan(ctx context.Context, cutoffMillis int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM broken_item_mirror WHERE break_time < $1`, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("prune mirror records: %w", err)
	}
	return tag.RowsAffected(), nil
}
