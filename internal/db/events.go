package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-scheduling/internal/scheduling"
)

// EventLog stores scheduling events in the event_logs table.
type EventLog struct {
	pool *pgxpool.Pool
}

func NewEventLog(pool *pgxpool.Pool) *EventLog {
	return &EventLog{pool: pool}
}

func (r *EventLog) Record(ctx context.Context, ev scheduling.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, entity_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.Type, nullableString(ev.EntityID), ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

// Recent returns the newest events first, optionally for one entity.
func (r *EventLog) Recent(ctx context.Context, entityID string, limit int) ([]scheduling.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	rows, err := r.pool.Query(ctx, `
		SELECT event_type, COALESCE(entity_id, ''), COALESCE(payload, '{}'::jsonb), created_at
		FROM event_logs
		WHERE $1 = '' OR entity_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query event logs: %w", err)
	}
	defer rows.Close()

	var result []scheduling.Event
	for rows.Next() {
		var ev scheduling.Event
		if err := rows.Scan(&ev.Type, &ev.EntityID, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event log: %w", err)
		}
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
