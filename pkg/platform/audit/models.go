// Package audit records attendance and verification events for compliance
// and security review. Events are emitted from domain logic and fanned out
// to a store and optional sinks.
package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance,
	// such as recorded attendance and biometric enrollment.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring,
	// such as a confident match for the wrong person.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	SubjectID string
	StationID string
	Action    string
	// Decision is the outcome of the action ("recorded", "denied").
	Decision string
	// Reason carries the denial code for denied attempts.
	Reason     string
	Confidence float64
	Device     string
	IP         string
	RequestID  string
	Severity   Severity
}

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type AuditEvent string

const (
	// Attendance events
	EventCheckInRecorded  AuditEvent = "check_in_recorded"
	EventCheckOutRecorded AuditEvent = "check_out_recorded"
	EventAttendanceDenied AuditEvent = "attendance_denied"

	// Verification events
	EventWrongPersonDetected AuditEvent = "wrong_person_detected"
	EventRateLimitExceeded   AuditEvent = "rate_limit_exceeded"

	// Enrollment events
	EventFaceEnrolled AuditEvent = "face_enrolled"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events: recorded attendance and biometric enrollment
	EventCheckInRecorded:  CategoryCompliance,
	EventCheckOutRecorded: CategoryCompliance,
	EventFaceEnrolled:     CategoryCompliance,

	// Security events: identity misuse signals
	EventWrongPersonDetected: CategorySecurity,
	EventRateLimitExceeded:   CategorySecurity,

	// Operations events: routine denials
	EventAttendanceDenied: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
