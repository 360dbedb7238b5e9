// Package verification decides whether a captured sample belongs to the
// subject who claims it. It rate limits attempts per subject, consults the
// external recognizer, and applies the similarity threshold policy.
package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"facegate/internal/capture"
	"facegate/internal/verification/metrics"
	"facegate/internal/verification/ratelimit"
	"facegate/internal/verification/recognizer"
	dErrors "facegate/pkg/domain-errors"
	"facegate/pkg/requestcontext"
)

// Recognizer proposes identity candidates for the faces in a sample.
type Recognizer interface {
	Recognize(ctx context.Context, sample capture.Sample) ([]Face, error)
}

// EnrollmentDirectory reports whether a subject has face examples on record.
type EnrollmentDirectory interface {
	IsEnrolled(ctx context.Context, subjectID string) (bool, error)
}

// Config holds the match policy knobs.
type Config struct {
	// SimilarityThreshold is the minimum candidate confidence accepted as a
	// match. Candidates below it are rejected regardless of identity.
	SimilarityThreshold float64

	// MinAttemptInterval is the per-subject floor between verification
	// attempts. A denied attempt does not extend the window.
	MinAttemptInterval time.Duration
}

// Gateway runs the verification pipeline for one sample.
type Gateway struct {
	cfg        Config
	recognizer Recognizer
	enrollment EnrollmentDirectory
	limiter    ratelimit.Store
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger for the gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the gateway.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// NewGateway creates a verification gateway.
func NewGateway(cfg Config, rec Recognizer, enrollment EnrollmentDirectory, limiter ratelimit.Store, opts ...Option) *Gateway {
	g := &Gateway{
		cfg:        cfg,
		recognizer: rec,
		enrollment: enrollment,
		limiter:    limiter,
		logger:     slog.Default(),
		tracer:     otel.Tracer("facegate/verification"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Verify checks that the sample shows the claimed subject. It returns a
// matched Result on success; every other outcome is a coded error so the
// caller can map it onto its own failure surface.
func (g *Gateway) Verify(ctx context.Context, subjectID string, sample capture.Sample) (Result, error) {
	ctx, span := g.tracer.Start(ctx, "verification.Verify",
		trace.WithAttributes(attribute.String("subject.id", subjectID)))
	defer span.End()

	enrolled, err := g.enrollment.IsEnrolled(ctx, subjectID)
	if err != nil {
		return Result{}, dErrors.Wrap(dErrors.CodeInternal, "check enrollment", err)
	}
	if !enrolled {
		return Result{}, dErrors.New(dErrors.CodeNotEnrolled, "subject has no enrolled face")
	}

	now := requestcontext.Now(ctx)
	retryAfter, allowed, err := g.limiter.Reserve(ctx, subjectID, now, g.cfg.MinAttemptInterval)
	if err != nil {
		return Result{}, dErrors.Wrap(dErrors.CodeInternal, "reserve verification attempt", err)
	}
	if !allowed {
		g.recordRateLimited(ctx, subjectID, retryAfter)
		return Result{}, dErrors.RateLimited(retryAfter)
	}

	start := time.Now()
	faces, err := g.recognizer.Recognize(ctx, sample)
	if g.metrics != nil {
		g.metrics.ObserveRecognize(start)
	}
	if err != nil {
		return Result{}, g.recognizerError(ctx, subjectID, err)
	}

	return g.decide(ctx, subjectID, faces)
}

// decide applies the match policy to the recognizer output.
func (g *Gateway) decide(ctx context.Context, subjectID string, faces []Face) (Result, error) {
	switch {
	case len(faces) == 0:
		g.recordAttempt("no_face")
		return Result{}, dErrors.New(dErrors.CodeNoFaceDetected, "no face detected in sample")
	case len(faces) > 1:
		g.recordAttempt("multiple_faces")
		return Result{}, dErrors.Newf(dErrors.CodeMultipleFaces, "%d faces detected, expected one", len(faces))
	}

	best, ok := bestCandidate(faces[0])
	if !ok {
		g.recordAttempt("no_face")
		return Result{}, dErrors.New(dErrors.CodeNoFaceDetected, "no identity candidates for detected face")
	}

	switch {
	case best.SubjectID == subjectID && best.Confidence >= g.cfg.SimilarityThreshold:
		g.recordAttempt("matched")
		return Result{
			SubjectID:  subjectID,
			Matched:    true,
			Confidence: best.Confidence,
			Method:     MethodFaceRecognition,
		}, nil
	case best.SubjectID != subjectID && best.Confidence >= g.cfg.SimilarityThreshold:
		g.recordAttempt("wrong_person")
		g.logger.WarnContext(ctx, "verification matched a different subject",
			slog.String("claimed_subject_id", subjectID),
			slog.String("request_id", requestcontext.RequestID(ctx)),
		)
		return Result{}, dErrors.New(dErrors.CodeWrongPerson, "sample matched a different subject")
	default:
		g.recordAttempt("low_confidence")
		return Result{}, dErrors.LowConfidence(best.Confidence)
	}
}

func (g *Gateway) recognizerError(ctx context.Context, subjectID string, err error) error {
	var rErr *recognizer.Error
	category := string(recognizer.ErrorInternal)
	if errors.As(err, &rErr) {
		category = string(rErr.Category)
	}
	if g.metrics != nil {
		g.metrics.RecordRecognizerFailure(category)
	}
	g.logger.ErrorContext(ctx, "recognizer call failed",
		slog.String("subject_id", subjectID),
		slog.String("category", category),
		slog.String("request_id", requestcontext.RequestID(ctx)),
		slog.Any("error", err),
	)
	if recognizer.IsRetryable(err) {
		return dErrors.Wrap(dErrors.CodeTransient, "recognizer unavailable", err)
	}
	return dErrors.Wrap(dErrors.CodeInternal, "recognizer call failed", err)
}

func (g *Gateway) recordAttempt(outcome string) {
	if g.metrics != nil {
		g.metrics.RecordAttempt(outcome)
	}
}

func (g *Gateway) recordRateLimited(ctx context.Context, subjectID string, retryAfter time.Duration) {
	if g.metrics != nil {
		g.metrics.RecordRateLimited()
	}
	g.logger.InfoContext(ctx, "verification attempt rate limited",
		slog.String("subject_id", subjectID),
		slog.Duration("retry_after", retryAfter),
		slog.String("request_id", requestcontext.RequestID(ctx)),
	)
}

// bestCandidate returns the highest-confidence candidate for a face.
func bestCandidate(face Face) (Candidate, bool) {
	if len(face.Candidates) == 0 {
		return Candidate{}, false
	}
	best := face.Candidates[0]
	for _, c := range face.Candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best, true
}
