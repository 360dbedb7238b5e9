package recognizer

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes recognizer service failures so the gateway can
// discriminate transient faults from contract problems without parsing
// provider-specific payloads.
type ErrorCategory string

const (
	// ErrorTimeout indicates the recognizer took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the recognizer rejected the sample payload.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates API key or permission issues.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the recognizer is unavailable (5xx, refused).
	ErrorOutage ErrorCategory = "outage"

	// ErrorContract indicates the response did not match the expected shape.
	ErrorContract ErrorCategory = "contract_mismatch"

	// ErrorInternal indicates an unexpected client-side failure.
	ErrorInternal ErrorCategory = "internal"
)

// Error wraps recognizer failures with normalized categorization. Retryable
// mirrors the taxonomy's Transient kind: timeouts and outages may be retried
// immediately, the rest need operator attention.
type Error struct {
	Category   ErrorCategory
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("recognizer [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("recognizer [%s]: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError builds a categorized recognizer error. Timeouts and outages are
// marked retryable.
func NewError(category ErrorCategory, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == ErrorTimeout || category == ErrorOutage,
	}
}

// IsRetryable reports whether err is a transient recognizer fault.
func IsRetryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}
