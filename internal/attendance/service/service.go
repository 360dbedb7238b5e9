// Package service orchestrates a check attempt end to end: presence
// attestation, office-hours policy, capture, verification, and the
// conditional record write. Handlers stay thin; all sequencing lives here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"facegate/internal/attendance/metrics"
	"facegate/internal/attendance/models"
	"facegate/internal/attendance/policy"
	"facegate/internal/attendance/store"
	"facegate/internal/capture"
	"facegate/internal/presence"
	"facegate/internal/verification"
	dErrors "facegate/pkg/domain-errors"
	audit "facegate/pkg/platform/audit"
	"facegate/pkg/platform/sentinel"
	"facegate/pkg/requestcontext"
)

// Verifier confirms the sample shows the claimed subject.
type Verifier interface {
	Verify(ctx context.Context, subjectID string, sample capture.Sample) (verification.Result, error)
}

// Capturer runs one capture session per attempt.
type Capturer interface {
	Start(ctx context.Context, device capture.Device) error
	Capture(ctx context.Context) (capture.Sample, error)
	Cancel()
}

// AuditPublisher records attendance and verification events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Upload is the client-submitted camera frame.
type Upload struct {
	Data        []byte
	ContentType string
}

// Service coordinates attendance checks against a single office-hours window
// and timezone.
type Service struct {
	window   policy.Window
	loc      *time.Location
	store    store.Store
	capturer Capturer
	verifier Verifier
	attestor presence.Attestor
	auditor  AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

// WithMetrics sets the metrics recorder for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates the attendance coordinator.
func NewService(
	window policy.Window,
	loc *time.Location,
	st store.Store,
	capturer Capturer,
	verifier Verifier,
	attestor presence.Attestor,
	auditor AuditPublisher,
	opts ...Option,
) *Service {
	s := &Service{
		window:   window,
		loc:      loc,
		store:    st,
		capturer: capturer,
		verifier: verifier,
		attestor: attestor,
		auditor:  auditor,
		logger:   slog.Default(),
		tracer:   otel.Tracer("facegate/attendance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn records the subject's arrival for today. Repeating a completed
// check-in returns the stored record unchanged.
func (s *Service) CheckIn(ctx context.Context, upload Upload) (models.AttendanceRecord, error) {
	return s.check(ctx, models.ActionCheckIn, upload)
}

// CheckOut records the subject's departure for today. Requires a recorded
// check-in; repeating a completed check-out returns the stored record
// unchanged.
func (s *Service) CheckOut(ctx context.Context, upload Upload) (models.AttendanceRecord, error) {
	return s.check(ctx, models.ActionCheckOut, upload)
}

// Today returns the subject's record for the current day.
func (s *Service) Today(ctx context.Context) (models.AttendanceRecord, error) {
	subjectID, err := s.subject(ctx)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	day := models.NewDay(requestcontext.Now(ctx), s.loc)

	rec, err := s.store.Get(ctx, subjectID, day)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.AttendanceRecord{}, dErrors.New(dErrors.CodeNotFound, "no attendance record for today")
		}
		return models.AttendanceRecord{}, dErrors.Wrap(dErrors.CodeInternal, "load today's record", err)
	}
	return rec, nil
}

// History returns the subject's records with from <= date <= to.
func (s *Service) History(ctx context.Context, from, to models.Day) ([]models.AttendanceRecord, error) {
	subjectID, err := s.subject(ctx)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "range end precedes range start")
	}

	recs, err := s.store.Range(ctx, subjectID, from, to)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load attendance history", err)
	}
	return recs, nil
}

func (s *Service) check(ctx context.Context, action models.Action, upload Upload) (models.AttendanceRecord, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.Check",
		trace.WithAttributes(attribute.String("attendance.action", string(action))))
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveCheck(start)
		}
	}()

	subjectID, err := s.subject(ctx)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	now := requestcontext.Now(ctx)
	day := models.NewDay(now, s.loc)

	// A completed slot answers the attempt before any capture or
	// verification work happens.
	if rec, done, err := s.alreadyRecorded(ctx, subjectID, day, action); err != nil {
		return models.AttendanceRecord{}, err
	} else if done {
		if s.metrics != nil {
			s.metrics.RecordIdempotent(string(action))
		}
		return rec, nil
	}

	present, err := s.attestor.IsPresentOnSite(ctx)
	if err != nil {
		return models.AttendanceRecord{}, dErrors.Wrap(dErrors.CodeInternal, "presence attestation", err)
	}
	if !present {
		err := dErrors.New(dErrors.CodePresenceDenied, "request does not originate on site")
		s.auditDenied(ctx, subjectID, action, now, err)
		return models.AttendanceRecord{}, err
	}

	decision := policy.Decide(action, now.In(s.loc), s.window)
	if !decision.Allowed {
		err := dErrors.Newf(dErrors.CodeOutsideWindow, "%s not allowed at %02d:%02d, boundary %s is %s",
			action, now.In(s.loc).Hour(), now.In(s.loc).Minute(),
			decision.Violated.Boundary, decision.Violated.At)
		s.auditDenied(ctx, subjectID, action, now, err)
		return models.AttendanceRecord{}, err
	}

	sample, err := s.captureSample(ctx, upload)
	if err != nil {
		s.auditDenied(ctx, subjectID, action, now, err)
		return models.AttendanceRecord{}, err
	}

	result, err := s.verifier.Verify(ctx, subjectID, sample)
	if err != nil {
		s.auditVerificationFailure(ctx, subjectID, action, now, err)
		return models.AttendanceRecord{}, err
	}

	event := models.CheckEvent{
		At:         now,
		Status:     decision.Status(action),
		Matched:    true,
		Confidence: result.Confidence,
		Method:     result.Method,
		Device:     requestcontext.DeviceName(ctx),
	}

	rec, written, err := s.writeEvent(ctx, subjectID, day, action, event)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if !written {
		// Lost the slot race to a concurrent attempt; the stored record is
		// the answer.
		if s.metrics != nil {
			s.metrics.RecordIdempotent(string(action))
		}
		return rec, nil
	}

	if s.metrics != nil {
		s.metrics.RecordCheck(string(action), string(event.Status))
	}
	s.auditRecorded(ctx, subjectID, action, event)
	s.logger.InfoContext(ctx, "check event recorded",
		slog.String("subject_id", subjectID),
		slog.String("action", string(action)),
		slog.String("status", string(event.Status)),
		slog.String("date", string(day)),
		slog.String("request_id", requestcontext.RequestID(ctx)),
	)
	return rec, nil
}

func (s *Service) subject(ctx context.Context) (string, error) {
	subjectID := requestcontext.SubjectID(ctx)
	if subjectID == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "no authenticated subject")
	}
	return subjectID, nil
}

// alreadyRecorded answers idempotent repeats and enforces check-out ordering.
func (s *Service) alreadyRecorded(ctx context.Context, subjectID string, day models.Day, action models.Action) (models.AttendanceRecord, bool, error) {
	rec, err := s.store.Get(ctx, subjectID, day)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			if action == models.ActionCheckOut {
				return models.AttendanceRecord{}, false, dErrors.New(dErrors.CodeNotCheckedIn, "check-out requires a recorded check-in")
			}
			return models.AttendanceRecord{}, false, nil
		}
		return models.AttendanceRecord{}, false, dErrors.Wrap(dErrors.CodeInternal, "load attendance record", err)
	}

	switch action {
	case models.ActionCheckOut:
		if rec.CheckIn == nil {
			return models.AttendanceRecord{}, false, dErrors.New(dErrors.CodeNotCheckedIn, "check-out requires a recorded check-in")
		}
		if rec.CheckOut != nil {
			return rec, true, nil
		}
	default:
		if rec.CheckIn != nil {
			return rec, true, nil
		}
	}
	return models.AttendanceRecord{}, false, nil
}

// captureSample runs one capture session over the uploaded frame. The
// session is always torn down before verification begins.
func (s *Service) captureSample(ctx context.Context, upload Upload) (capture.Sample, error) {
	device := capture.NewUploadDevice(upload.Data, upload.ContentType, requestcontext.Now(ctx))

	if err := s.capturer.Start(ctx, device); err != nil {
		switch {
		case errors.Is(err, capture.ErrSessionActive), errors.Is(err, capture.ErrDeviceUnavailable):
			return capture.Sample{}, dErrors.Wrap(dErrors.CodeDeviceUnavailable, "capture device busy or unavailable", err)
		default:
			return capture.Sample{}, dErrors.Wrap(dErrors.CodeInternal, "start capture session", err)
		}
	}

	sample, err := s.capturer.Capture(ctx)
	if err != nil {
		s.capturer.Cancel()
		if errors.Is(err, capture.ErrCaptureFailed) {
			return capture.Sample{}, dErrors.Wrap(dErrors.CodeCaptureFailed, "capture failed", err)
		}
		return capture.Sample{}, dErrors.Wrap(dErrors.CodeInternal, "capture sample", err)
	}
	return sample, nil
}

func (s *Service) writeEvent(ctx context.Context, subjectID string, day models.Day, action models.Action, event models.CheckEvent) (models.AttendanceRecord, bool, error) {
	var (
		rec     models.AttendanceRecord
		written bool
		err     error
	)
	if action == models.ActionCheckOut {
		rec, written, err = s.store.PutCheckOut(ctx, subjectID, day, event)
	} else {
		rec, written, err = s.store.PutCheckIn(ctx, subjectID, day, event)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return models.AttendanceRecord{}, false, dErrors.New(dErrors.CodeNotCheckedIn, "check-out requires a recorded check-in")
		}
		return models.AttendanceRecord{}, false, dErrors.Wrap(dErrors.CodeInternal, "write check event", err)
	}
	return rec, written, nil
}

func (s *Service) auditRecorded(ctx context.Context, subjectID string, action models.Action, event models.CheckEvent) {
	auditAction := audit.EventCheckInRecorded
	if action == models.ActionCheckOut {
		auditAction = audit.EventCheckOutRecorded
	}
	s.emit(ctx, audit.Event{
		Timestamp:  event.At,
		SubjectID:  subjectID,
		StationID:  requestcontext.StationID(ctx),
		Action:     string(auditAction),
		Decision:   "recorded",
		Reason:     string(event.Status),
		Confidence: event.Confidence,
		Device:     event.Device,
		IP:         requestcontext.ClientIP(ctx),
		RequestID:  requestcontext.RequestID(ctx),
		Severity:   audit.SeverityInfo,
	})
}

func (s *Service) auditDenied(ctx context.Context, subjectID string, action models.Action, now time.Time, cause error) {
	code := dErrors.CodeOf(cause)
	if s.metrics != nil {
		s.metrics.RecordDenied(string(action), string(code))
	}
	s.emit(ctx, audit.Event{
		Timestamp: now,
		SubjectID: subjectID,
		StationID: requestcontext.StationID(ctx),
		Action:    string(audit.EventAttendanceDenied),
		Decision:  "denied",
		Reason:    string(code),
		IP:        requestcontext.ClientIP(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Severity:  audit.SeverityInfo,
	})
}

// auditVerificationFailure gives identity misuse signals their own security
// events; other verification failures are ordinary denials.
func (s *Service) auditVerificationFailure(ctx context.Context, subjectID string, action models.Action, now time.Time, cause error) {
	code := dErrors.CodeOf(cause)
	if s.metrics != nil {
		s.metrics.RecordDenied(string(action), string(code))
	}

	switch code {
	case dErrors.CodeWrongPerson:
		s.logger.WarnContext(ctx, "confident match for a different subject",
			slog.String("subject_id", subjectID),
			slog.String("request_id", requestcontext.RequestID(ctx)),
		)
		s.emit(ctx, audit.Event{
			Timestamp: now,
			SubjectID: subjectID,
			StationID: requestcontext.StationID(ctx),
			Action:    string(audit.EventWrongPersonDetected),
			Decision:  "denied",
			Reason:    string(code),
			IP:        requestcontext.ClientIP(ctx),
			RequestID: requestcontext.RequestID(ctx),
			Severity:  audit.SeverityCritical,
		})
	case dErrors.CodeRateLimited:
		s.emit(ctx, audit.Event{
			Timestamp: now,
			SubjectID: subjectID,
			StationID: requestcontext.StationID(ctx),
			Action:    string(audit.EventRateLimitExceeded),
			Decision:  "denied",
			Reason:    string(code),
			IP:        requestcontext.ClientIP(ctx),
			RequestID: requestcontext.RequestID(ctx),
			Severity:  audit.SeverityWarning,
		})
	default:
		s.emit(ctx, audit.Event{
			Timestamp: now,
			SubjectID: subjectID,
			StationID: requestcontext.StationID(ctx),
			Action:    string(audit.EventAttendanceDenied),
			Decision:  "denied",
			Reason:    string(code),
			IP:        requestcontext.ClientIP(ctx),
			RequestID: requestcontext.RequestID(ctx),
			Severity:  audit.SeverityInfo,
		})
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", slog.Any("error", err))
	}
}
