// Package report aggregates attendance records into per-range statistics.
// Weekends never count as working days; holidays are excised from the range
// and approved leave reconciles days that would otherwise count as absent.
package report

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"facegate/internal/attendance/models"
	"facegate/internal/attendance/store"
	dErrors "facegate/pkg/domain-errors"
)

// Stats summarizes one subject's attendance over a range.
type Stats struct {
	// WorkingDays is the number of weekdays in the range minus holidays.
	WorkingDays int `json:"working_days"`
	// Present counts working days with a recorded check-in.
	Present int `json:"present"`
	// Completed counts present days that also have a check-out.
	Completed int `json:"completed"`
	Late      int `json:"late"`
	Early     int `json:"early"`
	OnLeave   int `json:"on_leave"`
	// Absent is working days with neither a check-in nor approved leave.
	Absent int `json:"absent"`
}

// Report is the rendered aggregate for one subject. Records carries the raw
// attendance rows the stats were derived from; Overview omits them.
type Report struct {
	SubjectID string                    `json:"subject_id"`
	From      models.Day                `json:"from"`
	To        models.Day                `json:"to"`
	Records   []models.AttendanceRecord `json:"records,omitempty"`
	Stats     Stats                     `json:"stats"`
}

// Service aggregates reports from the attendance store and the leave and
// holiday sources.
type Service struct {
	store    store.Store
	leave    LeaveSource
	holidays HolidaySource
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates the report service.
func NewService(st store.Store, leave LeaveSource, holidays HolidaySource, opts ...Option) *Service {
	s := &Service{
		store:    st,
		leave:    leave,
		holidays: holidays,
		logger:   slog.Default(),
		tracer:   otel.Tracer("facegate/report"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subject builds one subject's report for from <= date <= to. The three
// inputs load concurrently; any failure fails the report.
func (s *Service) Subject(ctx context.Context, subjectID string, from, to models.Day) (Report, error) {
	ctx, span := s.tracer.Start(ctx, "report.Subject",
		trace.WithAttributes(attribute.String("subject.id", subjectID)))
	defer span.End()

	if to.Before(from) {
		return Report{}, dErrors.New(dErrors.CodeInvalidInput, "range end precedes range start")
	}

	var (
		records  []models.AttendanceRecord
		leave    []models.Day
		holidays []models.Day
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.Range(gctx, subjectID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		leave, err = s.leave.ApprovedLeave(gctx, subjectID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		holidays, err = s.holidays.Holidays(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, dErrors.Wrap(dErrors.CodeInternal, "load report inputs", err)
	}

	return Report{
		SubjectID: subjectID,
		From:      from,
		To:        to,
		Records:   records,
		Stats:     aggregate(from, to, records, leave, holidays),
	}, nil
}

// Overview builds reports for every subject with records in the range.
func (s *Service) Overview(ctx context.Context, from, to models.Day) ([]Report, error) {
	ctx, span := s.tracer.Start(ctx, "report.Overview")
	defer span.End()

	if to.Before(from) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "range end precedes range start")
	}

	all, err := s.store.List(ctx, from, to)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list attendance records", err)
	}

	holidays, err := s.holidays.Holidays(ctx, from, to)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load holidays", err)
	}

	bySubject := make(map[string][]models.AttendanceRecord)
	var order []string
	for _, rec := range all {
		if _, seen := bySubject[rec.SubjectID]; !seen {
			order = append(order, rec.SubjectID)
		}
		bySubject[rec.SubjectID] = append(bySubject[rec.SubjectID], rec)
	}

	reports := make([]Report, 0, len(order))
	for _, subjectID := range order {
		leave, err := s.leave.ApprovedLeave(ctx, subjectID, from, to)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "load approved leave", err)
		}
		reports = append(reports, Report{
			SubjectID: subjectID,
			From:      from,
			To:        to,
			Stats:     aggregate(from, to, bySubject[subjectID], leave, holidays),
		})
	}
	return reports, nil
}

// aggregate classifies every working day in the range exactly once.
func aggregate(from, to models.Day, records []models.AttendanceRecord, leave, holidays []models.Day) Stats {
	holidaySet := daySet(holidays)
	leaveSet := daySet(leave)

	recordByDay := make(map[models.Day]models.AttendanceRecord, len(records))
	for _, rec := range records {
		recordByDay[rec.Date] = rec
	}

	var stats Stats
	for day := from; !day.After(to); day = day.Next() {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, holiday := holidaySet[day]; holiday {
			continue
		}
		stats.WorkingDays++

		rec, ok := recordByDay[day]
		switch {
		case ok && rec.CheckIn != nil:
			stats.Present++
			if rec.CheckIn.IsLate() {
				stats.Late++
			}
			if rec.CheckOut != nil {
				stats.Completed++
				if rec.CheckOut.IsEarly() {
					stats.Early++
				}
			}
		default:
			if _, onLeave := leaveSet[day]; onLeave {
				stats.OnLeave++
			} else {
				stats.Absent++
			}
		}
	}
	return stats
}

func daySet(days []models.Day) map[models.Day]struct{} {
	set := make(map[models.Day]struct{}, len(days))
	for _, day := range days {
		set[day] = struct{}{}
	}
	return set
}
