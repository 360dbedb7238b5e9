package logger

import (
	"log/slog"
	"os"
)

// New returns the application logger. JSON output so log pipelines can index
// the request_id and subject_id attributes the handlers attach.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
