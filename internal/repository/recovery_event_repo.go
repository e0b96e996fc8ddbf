package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-item-recovery/internal/model"
)

// RecoveryEventRepository is the audit trail of restore and delete
// actions against the ledger.
type RecoveryEventRepository struct {
	pool *pgxpool.Pool
}

func NewRecoveryEventRepository(pool *pgxpool.Pool) *RecoveryEventRepository {
	return &RecoveryEventRepository{pool: pool}
}

func (r *RecoveryEventRepository) Insert(ctx context.Context, ev model.RecoveryEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO recovery_events (id, action, user_id, item_type, item_name, quantity, cost, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, ev.Action, ev.UserID, ev.ItemType, ev.ItemName, ev.Quantity, ev.Cost, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert recovery event: %w", err)
	}
	return nil
}

func (r *RecoveryEventRepository) ListByUser(ctx context.Context, userID string, page int, limit int) ([]model.RecoveryEvent, model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	// An empty user filter lists events across all users.
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM recovery_events WHERE ($1 = '' OR user_id = $1)`, userID).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count recovery events: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, action, user_id, item_type, item_name, quantity, cost, occurred_at
		 FROM recovery_events
		 WHERE ($1 = '' OR user_id = $1)
		 ORDER BY occurred_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("list recovery events: %w", err)
	}
	defer rows.Close()

	events := make([]model.RecoveryEvent, 0)
	for rows.Next() {
		var ev model.RecoveryEvent
		var occurredAt time.Time
		if err := rows.Scan(&ev.ID, &ev.Action, &ev.UserID, &ev.ItemType, &ev.ItemName,
			&ev.Quantity, &ev.Cost, &occurredAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan recovery event: %w", err)
		}
		ev.OccurredAt = occurredAt.Format(time.RFC3339Nano)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Meta{}, fmt.Errorf("list recovery events: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	meta := model.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
	return events, meta, nil
}
