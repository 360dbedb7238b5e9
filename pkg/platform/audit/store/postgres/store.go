// Package postgres persists audit events in PostgreSQL through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "facegate/pkg/platform/audit"
)

// Schema is the audit table DDL. Applied at startup; idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	category   TEXT        NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	subject_id TEXT        NOT NULL DEFAULT '',
	station_id TEXT        NOT NULL DEFAULT '',
	action     TEXT        NOT NULL,
	decision   TEXT        NOT NULL DEFAULT '',
	reason     TEXT        NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	device     TEXT        NOT NULL DEFAULT '',
	ip         TEXT        NOT NULL DEFAULT '',
	request_id TEXT        NOT NULL DEFAULT '',
	severity   TEXT        NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS audit_events_subject_idx ON audit_events (subject_id, occurred_at);
`

// Store implements the audit store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the audit schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply audit schema: %w", err)
	}
	return nil
}

// Append writes one audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, category, occurred_at, subject_id, station_id,
			action, decision, reason, confidence, device, ip, request_id, severity
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.New(), string(category), event.Timestamp, event.SubjectID, event.StationID,
		event.Action, event.Decision, event.Reason, event.Confidence,
		event.Device, event.IP, event.RequestID, string(event.Severity))
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListBySubject returns a subject's events ordered oldest first.
func (s *Store) ListBySubject(ctx context.Context, subjectID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, occurred_at, subject_id, station_id,
		       action, decision, reason, confidence, device, ip, request_id, severity
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY occurred_at`,
		subjectID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
			severity string
		)
		err := rows.Scan(
			&category, &event.Timestamp, &event.SubjectID, &event.StationID,
			&event.Action, &event.Decision, &event.Reason, &event.Confidence,
			&event.Device, &event.IP, &event.RequestID, &severity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.Severity = audit.Severity(severity)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
