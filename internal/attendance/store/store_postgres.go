package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"facegate/internal/attendance/models"
	"facegate/pkg/platform/sentinel"
)

// PostgresStore persists attendance records in PostgreSQL. Check slots are
// claimed with single-statement conditional writes so concurrent attempts
// for the same (subject, day) never need an advisory lock.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed attendance store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const recordColumns = `
	subject_id, date,
	check_in_at, check_in_status, check_in_confidence, check_in_method, check_in_device,
	check_out_at, check_out_status, check_out_confidence, check_out_method, check_out_device,
	duration_minutes, updated_at`

func (s *PostgresStore) Get(ctx context.Context, subjectID string, day models.Day) (models.AttendanceRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT`+recordColumns+`
		FROM attendance_records
		WHERE subject_id = $1 AND date = $2`,
		subjectID, string(day))

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AttendanceRecord{}, sentinel.ErrNotFound
		}
		return models.AttendanceRecord{}, fmt.Errorf("get attendance record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Range(ctx context.Context, subjectID string, from, to models.Day) ([]models.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+recordColumns+`
		FROM attendance_records
		WHERE subject_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`,
		subjectID, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("range attendance records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *PostgresStore) List(ctx context.Context, from, to models.Day) ([]models.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+recordColumns+`
		FROM attendance_records
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, subject_id`,
		string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *PostgresStore) PutCheckIn(ctx context.Context, subjectID string, day models.Day, event models.CheckEvent) (models.AttendanceRecord, bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO attendance_records (
			subject_id, date,
			check_in_at, check_in_status, check_in_confidence, check_in_method, check_in_device,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $3)
		ON CONFLICT (subject_id, date) DO NOTHING`,
		subjectID, string(day),
		event.At, string(event.Status), event.Confidence, event.Method, event.Device)
	if err != nil {
		return models.AttendanceRecord{}, false, fmt.Errorf("put check-in: %w", err)
	}

	rec, err := s.Get(ctx, subjectID, day)
	if err != nil {
		return models.AttendanceRecord{}, false, err
	}
	return rec, tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) PutCheckOut(ctx context.Context, subjectID string, day models.Day, event models.CheckEvent) (models.AttendanceRecord, bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE attendance_records
		SET check_out_at = $3,
		    check_out_status = $4,
		    check_out_confidence = $5,
		    check_out_method = $6,
		    check_out_device = $7,
		    duration_minutes = FLOOR(EXTRACT(EPOCH FROM ($3 - check_in_at)) / 60)::int,
		    updated_at = $3
		WHERE subject_id = $1 AND date = $2 AND check_out_at IS NULL`,
		subjectID, string(day),
		event.At, string(event.Status), event.Confidence, event.Method, event.Device)
	if err != nil {
		return models.AttendanceRecord{}, false, fmt.Errorf("put check-out: %w", err)
	}

	rec, err := s.Get(ctx, subjectID, day)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.AttendanceRecord{}, false, sentinel.ErrInvalidState
		}
		return models.AttendanceRecord{}, false, err
	}
	return rec, tag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.AttendanceRecord, error) {
	var (
		rec      models.AttendanceRecord
		date     time.Time
		in       nullableEvent
		out      nullableEvent
		duration *int
	)
	err := row.Scan(
		&rec.SubjectID, &date,
		&in.at, &in.status, &in.confidence, &in.method, &in.device,
		&out.at, &out.status, &out.confidence, &out.method, &out.device,
		&duration, &rec.UpdatedAt,
	)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	rec.Date = models.NewDay(date, time.UTC)
	rec.CheckIn = in.event()
	rec.CheckOut = out.event()
	if duration != nil {
		rec.DurationMinutes = *duration
	}
	return rec, nil
}

func collectRecords(rows pgx.Rows) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return out, nil
}

// nullableEvent scans one check slot whose columns are all NULL until the
// slot is written.
type nullableEvent struct {
	at         *time.Time
	status     *string
	confidence *float64
	method     *string
	device     *string
}

func (n nullableEvent) event() *models.CheckEvent {
	if n.at == nil {
		return nil
	}
	ev := models.CheckEvent{At: *n.at, Matched: true}
	if n.status != nil {
		ev.Status = models.Status(*n.status)
	}
	if n.confidence != nil {
		ev.Confidence = *n.confidence
	}
	if n.method != nil {
		ev.Method = *n.method
	}
	if n.device != nil {
		ev.Device = *n.device
	}
	return &ev
}
