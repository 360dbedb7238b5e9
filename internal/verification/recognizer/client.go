// Package recognizer is the HTTP client for the external face recognition
// service. The service owns detection, enrollment, and recognition; this
// client only shapes requests, bounds them with timeouts, and normalizes
// failures into a small taxonomy the gateway can act on.
package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"facegate/internal/capture"
)

// noFaceFoundCode is the service's application code for "no face in image".
// It arrives as a 400 but is a domain outcome, not a transport fault.
const noFaceFoundCode = 28

// Config holds the recognizer endpoint settings.
type Config struct {
	BaseURL           string
	RecognitionAPIKey string
	DetectionAPIKey   string

	// DetectionThreshold is the minimum detection probability the service
	// applies before proposing candidates.
	DetectionThreshold float64

	// CandidateLimit bounds how many candidates the service returns per
	// detected face.
	CandidateLimit int

	Timeout time.Duration
}

// Client calls the recognition service over HTTP.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// Candidate is one (identity, confidence) pair the service proposes for a
// detected face. Confidence is on a [0,1] scale.
type Candidate struct {
	SubjectID  string
	Confidence float64
}

// Face is one face the service detected in a sample, with its match
// candidates in the service's order.
type Face struct {
	DetectionConfidence float64
	Candidates          []Candidate
}

// Enrollment is the service's acknowledgement of a stored face example.
type Enrollment struct {
	FaceID    string
	SubjectID string
}

// Detection is one detected face region with its probability.
type Detection struct {
	Probability float64
}

// New creates a recognizer client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		tracer: otel.Tracer("facegate/recognizer"),
	}
}

// Recognize submits a sample and returns the detected faces with their match
// candidates. An empty slice means the service found no face.
func (c *Client) Recognize(ctx context.Context, sample capture.Sample) ([]Face, error) {
	ctx, span := c.tracer.Start(ctx, "recognizer.Recognize")
	defer span.End()

	query := url.Values{
		"limit":              {strconv.Itoa(c.cfg.CandidateLimit)},
		"det_prob_threshold": {formatThreshold(c.cfg.DetectionThreshold)},
	}
	body, err := c.postSample(ctx, "/api/v1/recognition/recognize", query, c.cfg.RecognitionAPIKey, sample)
	if err != nil {
		var noFace *noFaceError
		if errors.As(err, &noFace) {
			span.SetAttributes(attribute.Int("recognizer.faces", 0))
			return nil, nil
		}
		return nil, err
	}

	var payload struct {
		Result []struct {
			Box struct {
				Probability float64 `json:"probability"`
			} `json:"box"`
			Subjects []struct {
				Subject    string  `json:"subject"`
				Similarity float64 `json:"similarity"`
			} `json:"subjects"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewError(ErrorContract, "decode recognize response", err)
	}

	faces := make([]Face, 0, len(payload.Result))
	for _, r := range payload.Result {
		face := Face{DetectionConfidence: r.Box.Probability}
		for _, sub := range r.Subjects {
			face.Candidates = append(face.Candidates, Candidate{
				SubjectID:  sub.Subject,
				Confidence: sub.Similarity,
			})
		}
		faces = append(faces, face)
	}
	span.SetAttributes(attribute.Int("recognizer.faces", len(faces)))
	return faces, nil
}

// Enroll registers a face example for a subject.
func (c *Client) Enroll(ctx context.Context, subjectID string, sample capture.Sample) (Enrollment, error) {
	ctx, span := c.tracer.Start(ctx, "recognizer.Enroll",
		trace.WithAttributes(attribute.String("subject.id", subjectID)))
	defer span.End()

	query := url.Values{"subject": {subjectID}}
	body, err := c.postSample(ctx, "/api/v1/recognition/faces", query, c.cfg.RecognitionAPIKey, sample)
	if err != nil {
		return Enrollment{}, err
	}

	var payload struct {
		ImageID string `json:"image_id"`
		Subject string `json:"subject"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Enrollment{}, NewError(ErrorContract, "decode enroll response", err)
	}
	if payload.ImageID == "" {
		return Enrollment{}, NewError(ErrorContract, "enroll response missing image_id", nil)
	}
	return Enrollment{FaceID: payload.ImageID, SubjectID: payload.Subject}, nil
}

// Detect runs face detection only, returning one entry per detected face.
func (c *Client) Detect(ctx context.Context, sample capture.Sample) ([]Detection, error) {
	ctx, span := c.tracer.Start(ctx, "recognizer.Detect")
	defer span.End()

	query := url.Values{
		"det_prob_threshold": {formatThreshold(c.cfg.DetectionThreshold)},
	}
	body, err := c.postSample(ctx, "/api/v1/detection/detect", query, c.cfg.DetectionAPIKey, sample)
	if err != nil {
		var noFace *noFaceError
		if errors.As(err, &noFace) {
			return nil, nil
		}
		return nil, err
	}

	var payload struct {
		Result []struct {
			Box struct {
				Probability float64 `json:"probability"`
			} `json:"box"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewError(ErrorContract, "decode detect response", err)
	}

	detections := make([]Detection, 0, len(payload.Result))
	for _, r := range payload.Result {
		detections = append(detections, Detection{Probability: r.Box.Probability})
	}
	return detections, nil
}

// noFaceError is internal: postSample returns it for the service's
// "no face found" application error so callers can map it to an empty result.
type noFaceError struct{}

func (*noFaceError) Error() string { return "no face found in sample" }

func (c *Client) postSample(ctx context.Context, path string, query url.Values, apiKey string, sample capture.Sample) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "sample.jpg")
	if err != nil {
		return nil, NewError(ErrorInternal, "build multipart body", err)
	}
	if _, err := part.Write(sample.Data); err != nil {
		return nil, NewError(ErrorInternal, "write sample", err)
	}
	if err := writer.Close(); err != nil {
		return nil, NewError(ErrorInternal, "finish multipart body", err)
	}

	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, NewError(ErrorInternal, "build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewError(ErrorTimeout, "recognizer call timed out", err)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, NewError(ErrorTimeout, "recognizer call timed out", err)
		}
		return nil, NewError(ErrorOutage, "recognizer unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(ErrorOutage, "read recognizer response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusBadRequest:
		var svcErr struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		}
		if json.Unmarshal(body, &svcErr) == nil && svcErr.Code == noFaceFoundCode {
			return nil, &noFaceError{}
		}
		return nil, NewError(ErrorBadData, fmt.Sprintf("recognizer rejected request: %s", svcErr.Message), nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewError(ErrorAuthentication, "recognizer rejected API key", nil)
	case resp.StatusCode >= 500:
		return nil, NewError(ErrorOutage, fmt.Sprintf("recognizer returned %d", resp.StatusCode), nil)
	default:
		return nil, NewError(ErrorContract, fmt.Sprintf("unexpected recognizer status %d", resp.StatusCode), nil)
	}
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
