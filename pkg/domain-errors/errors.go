// Package domainerrors defines the coded, user-renderable error taxonomy for
// attendance and verification flows. Every kind a caller may need to render a
// specific message for gets its own code; infrastructure facts stay in
// pkg/platform/sentinel and are translated into these codes at the service
// boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Code identifies a domain failure kind.
type Code string

const (
	// Policy and sequencing.
	CodeOutsideWindow Code = "outside_window"
	CodeNotCheckedIn  Code = "not_checked_in_yet"

	// Presence attestation.
	CodePresenceDenied Code = "presence_denied"

	// Capture.
	CodeDeviceUnavailable Code = "device_unavailable"
	CodeCaptureFailed     Code = "capture_failed"

	// Verification.
	CodeNoFaceDetected Code = "no_face_detected"
	CodeMultipleFaces  Code = "multiple_faces_detected"
	CodeLowConfidence  Code = "low_confidence"
	CodeWrongPerson    Code = "wrong_person"
	CodeRateLimited    Code = "rate_limited"
	CodeNotEnrolled    Code = "not_enrolled"
	CodeTransient      Code = "transient"

	// Generic.
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal"
)

// Error is a coded domain error. RetryAfter is populated only for
// CodeRateLimited; Confidence only for CodeLowConfidence.
type Error struct {
	Code       Code
	Message    string
	RetryAfter time.Duration
	Confidence float64
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// RateLimited builds a rate limit error carrying the delay the caller must
// respect before retrying.
func RateLimited(retryAfter time.Duration) *Error {
	return &Error{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("too many attempts, retry in %s", retryAfter.Round(time.Second)),
		RetryAfter: retryAfter,
	}
}

// LowConfidence builds a verification rejection carrying the best similarity
// the recognizer produced, so callers can render it.
func LowConfidence(confidence float64) *Error {
	return &Error{
		Code:       CodeLowConfidence,
		Message:    "face did not match with sufficient confidence",
		Confidence: confidence,
	}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps domain codes to HTTP statuses. Recoverable policy and
// verification rejections are 4xx so clients retry deliberately; transient
// infrastructure faults are 5xx.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeOutsideWindow, CodeNotCheckedIn, CodeNoFaceDetected,
		CodeMultipleFaces, CodeLowConfidence:
		return http.StatusUnprocessableEntity
	case CodeWrongPerson, CodePresenceDenied:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNotEnrolled:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCaptureFailed:
		return http.StatusBadGateway
	case CodeDeviceUnavailable, CodeTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
