package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the attendance table DDL. Applied at startup; every statement is
// idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS attendance_records (
	subject_id           TEXT        NOT NULL,
	date                 DATE        NOT NULL,
	check_in_at          TIMESTAMPTZ,
	check_in_status      TEXT,
	check_in_confidence  DOUBLE PRECISION,
	check_in_method      TEXT,
	check_in_device      TEXT,
	check_out_at         TIMESTAMPTZ,
	check_out_status     TEXT,
	check_out_confidence DOUBLE PRECISION,
	check_out_method     TEXT,
	check_out_device     TEXT,
	duration_minutes     INTEGER,
	updated_at           TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (subject_id, date)
);

CREATE INDEX IF NOT EXISTS attendance_records_date_idx ON attendance_records (date);
`

// Migrate applies the attendance schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply attendance schema: %w", err)
	}
	return nil
}
