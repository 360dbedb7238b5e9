// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// It defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this
// package free of net/http dependencies, services can import only what they
// need without pulling in HTTP-related code.
//
// Usage in services (read values):
//
//	subjectID := requestcontext.SubjectID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithSubjectID(ctx, "emp-42")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	subjectIDKey   struct{}
	stationIDKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	deviceNameKey  struct{}
	networkSSIDKey struct{}
	coordinatesKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeySubjectID   = subjectIDKey{}
	ContextKeyStationID   = stationIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyDeviceName  = deviceNameKey{}
	ContextKeyNetworkSSID = networkSSIDKey{}
	ContextKeyCoordinates = coordinatesKey{}
)

// Coordinates is a client-reported geographic position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// SubjectID retrieves the authenticated subject ID from the context.
// Returns "" if not set.
func SubjectID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeySubjectID).(string); ok {
		return id
	}
	return ""
}

// WithSubjectID injects a subject ID into the context.
func WithSubjectID(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, ContextKeySubjectID, subjectID)
}

// StationID retrieves the capture station identifier from the context.
func StationID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyStationID).(string); ok {
		return id
	}
	return ""
}

// WithStationID injects a capture station identifier into the context.
func WithStationID(ctx context.Context, stationID string) context.Context {
	return context.WithValue(ctx, ContextKeyStationID, stationID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// DeviceName retrieves the parsed device display name from the context.
func DeviceName(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyDeviceName).(string); ok {
		return name
	}
	return ""
}

// WithDeviceName injects a device display name into a context.
func WithDeviceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyDeviceName, name)
}

// NetworkSSID retrieves the station-reported WiFi network name from the
// context.
func NetworkSSID(ctx context.Context) string {
	if ssid, ok := ctx.Value(ContextKeyNetworkSSID).(string); ok {
		return ssid
	}
	return ""
}

// WithNetworkSSID injects a station-reported WiFi network name.
func WithNetworkSSID(ctx context.Context, ssid string) context.Context {
	return context.WithValue(ctx, ContextKeyNetworkSSID, ssid)
}

// ClientCoordinates retrieves the client-reported position from the context.
func ClientCoordinates(ctx context.Context) (Coordinates, bool) {
	c, ok := ctx.Value(ContextKeyCoordinates).(Coordinates)
	return c, ok
}

// WithClientCoordinates injects a client-reported position.
func WithClientCoordinates(ctx context.Context, c Coordinates) context.Context {
	return context.WithValue(ctx, ContextKeyCoordinates, c)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI). All
// time-window decisions and record timestamps within one request must come
// from this single value.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Used by the request-time
// middleware and by tests that need a fixed clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
