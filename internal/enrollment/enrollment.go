// Package enrollment registers face examples with the recognizer and records
// which subjects have examples on file. The recognizer owns the biometric
// templates; this package only tracks enrollment state, which the
// verification gateway consults before accepting attempts.
package enrollment

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"facegate/internal/capture"
	"facegate/internal/verification/recognizer"
	dErrors "facegate/pkg/domain-errors"
	audit "facegate/pkg/platform/audit"
	"facegate/pkg/requestcontext"
)

// Record is one registered face example.
type Record struct {
	SubjectID  string    `json:"subject_id"`
	FaceID     string    `json:"face_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// Store persists enrollment records.
type Store interface {
	Add(ctx context.Context, record Record) error
	ListBySubject(ctx context.Context, subjectID string) ([]Record, error)
}

// Enroller registers a face example with the recognition service.
type Enroller interface {
	Enroll(ctx context.Context, subjectID string, sample capture.Sample) (recognizer.Enrollment, error)
}

// AuditPublisher records enrollment events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs enrollments and answers enrollment checks.
type Service struct {
	store    Store
	enroller Enroller
	auditor  AuditPublisher
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

// NewService creates the enrollment service.
func NewService(store Store, enroller Enroller, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		store:    store,
		enroller: enroller,
		auditor:  auditor,
		logger:   slog.Default(),
		tracer:   otel.Tracer("facegate/enrollment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enroll registers one face example for the subject.
func (s *Service) Enroll(ctx context.Context, subjectID string, sample capture.Sample) (Record, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.Enroll",
		trace.WithAttributes(attribute.String("subject.id", subjectID)))
	defer span.End()

	if len(sample.Data) == 0 {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "sample is empty")
	}

	result, err := s.enroller.Enroll(ctx, subjectID, sample)
	if err != nil {
		if recognizer.IsRetryable(err) {
			return Record{}, dErrors.Wrap(dErrors.CodeTransient, "recognizer unavailable", err)
		}
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "register face example", err)
	}

	record := Record{
		SubjectID:  subjectID,
		FaceID:     result.FaceID,
		EnrolledAt: requestcontext.Now(ctx),
	}
	if err := s.store.Add(ctx, record); err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "save enrollment record", err)
	}

	if s.auditor != nil {
		_ = s.auditor.Emit(ctx, audit.Event{
			Timestamp: record.EnrolledAt,
			SubjectID: subjectID,
			StationID: requestcontext.StationID(ctx),
			Action:    string(audit.EventFaceEnrolled),
			Decision:  "recorded",
			IP:        requestcontext.ClientIP(ctx),
			RequestID: requestcontext.RequestID(ctx),
			Severity:  audit.SeverityInfo,
		})
	}
	s.logger.InfoContext(ctx, "face example enrolled",
		slog.String("subject_id", subjectID),
		slog.String("face_id", record.FaceID),
		slog.String("request_id", requestcontext.RequestID(ctx)),
	)
	return record, nil
}

// IsEnrolled reports whether the subject has at least one face example.
func (s *Service) IsEnrolled(ctx context.Context, subjectID string) (bool, error) {
	records, err := s.store.ListBySubject(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}
