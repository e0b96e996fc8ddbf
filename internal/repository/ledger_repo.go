package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-item-recovery/internal/model"
)

// LedgerRepository persists per-user recovery entries. Slot-key
// assignment and deduplication live in the ledger service; this layer
// is plain row storage.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) Entries(ctx context.Context, userID string) ([]model.RecoveryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT slot_key, item, created_at, blacklisted
		 FROM recovery_entries
		 WHERE user_id = $1
		 ORDER BY slot_key ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", model.ErrPersistence, err)
	}
	defer rows.Close()

	entries := make([]model.RecoveryEntry, 0)
	for rows.Next() {
		var entry model.RecoveryEntry
		var itemJSON []byte

		if err := rows.Scan(&entry.SlotKey, &itemJSON, &entry.CreatedAt, &entry.Blacklisted); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", model.ErrPersistence, err)
		}
		if err := json.Unmarshal(itemJSON, &entry.Item); err != nil {
			return nil, fmt.Errorf("%w: decode item snapshot: %v", model.ErrPersistence, err)
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", model.ErrPersistence, err)
	}
	return entries, nil
}

func (r *LedgerRepository) Put(ctx context.Context, userID string, entry model.RecoveryEntry) error {
	itemJSON, err := json.Marshal(entry.Item)
	if err != nil {
		return fmt.Errorf("%w: encode item snapshot: %v", model.ErrPersistence, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO recovery_entries (user_id, slot_key, item, created_at, blacklisted)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, entry.SlotKey, itemJSON, entry.CreatedAt, entry.Blacklisted)
	if err != nil {
		return fmt.Errorf("%w: put entry: %v", model.ErrPersistence, err)
	}
	return nil
}

func (r *LedgerRepository) Remove(ctx context.Context, userID string, slotKey int) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM recovery_entries WHERE user_id = $1 AND slot_key = $2`,
		userID, slotKey)
	if err != nil {
		return fmt.Errorf("%w: remove entry: %v", model.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}

func (r *LedgerRepository) Users(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM recovery_entries`)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", model.ErrPersistence, err)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", model.ErrPersistence, err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list users: %v", model.ErrPersistence, err)
	}
	return users, nil
}

func (r *LedgerRepository) RemoveOlderThan(ctx context.Context, userID string, cutoffMillis int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM recovery_entries WHERE user_id = $1 AND created_at < $2`,
		userID, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("%w: remove aged entries: %v", model.ErrPersistence, err)
	}
	return tag.RowsAffected(), nil
}
