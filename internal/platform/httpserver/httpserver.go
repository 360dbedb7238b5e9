// Package httpserver builds the process's HTTP server. Timeouts are sized
// for the attendance API's traffic shape: most requests are small JSON, but
// check-in and enrollment carry base64 camera frames of a few megabytes, so
// the read timeout leaves room for a slow station uplink.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute

	// Largest accepted body: a base64 frame from a station camera plus
	// request envelope overhead.
	maxBodyBytes = 8 << 20
)

// New builds the server for the given router. Per-request deadlines are the
// timeout middleware's job; the values here bound the connection itself.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           http.MaxBytesHandler(handler, maxBodyBytes),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
