package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		role          TEXT NOT NULL,
		gender        TEXT NOT NULL DEFAULT '',
		age           INTEGER,
		date_of_birth TEXT NOT NULL DEFAULT '',
		blood_type    TEXT NOT NULL DEFAULT '',
		contact       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS doctor_schedules (
		doctor_id TEXT NOT NULL,
		date      DATE NOT NULL,
		slots     TEXT[] NOT NULL DEFAULT '{}',
		PRIMARY KEY (doctor_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id                     TEXT PRIMARY KEY,
		patient_id             TEXT NOT NULL,
		doctor_id              TEXT NOT NULL,
		date                   DATE NOT NULL,
		time                   TEXT NOT NULL,
		status                 TEXT NOT NULL,
		consultation_notes     TEXT NOT NULL DEFAULT '',
		prescribed_medications TEXT NOT NULL DEFAULT '',
		service_type           TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS appointments_active_slot
		ON appointments (doctor_id, date, time)
		WHERE status IN ('PENDING', 'SCHEDULED', 'CONFIRMED')`,
	`CREATE TABLE IF NOT EXISTS leaves (
		id       TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL,
		date     DATE NOT NULL,
		status   TEXT NOT NULL,
		reason   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS event_logs (
		id         BIGSERIAL PRIMARY KEY,
		event_type TEXT NOT NULL,
		entity_id  TEXT,
		payload    JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
