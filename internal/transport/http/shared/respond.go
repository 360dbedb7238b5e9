// Package shared centralizes JSON response envelopes so every handler renders
// success and failure the same way.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	dErrors "facegate/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// RetryAfterSeconds accompanies rate limit errors.
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
	// Confidence accompanies low-confidence verification rejections.
	Confidence float64 `json:"confidence,omitempty"`
}

// WriteJSON renders a success payload.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError translates a domain error into the JSON error envelope. Rate
// limit errors additionally set the Retry-After header.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Error:   string(dErrors.CodeInternal),
		Message: "internal error",
	}
	status := http.StatusInternalServerError

	var de *dErrors.Error
	if errors.As(err, &de) {
		resp.Error = string(de.Code)
		resp.Message = de.Message
		status = dErrors.ToHTTPStatus(de.Code)

		if de.Code == dErrors.CodeRateLimited && de.RetryAfter > 0 {
			seconds := int(de.RetryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			resp.RetryAfterSeconds = seconds
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		if de.Code == dErrors.CodeLowConfidence {
			resp.Confidence = de.Confidence
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
