// Package station authenticates capture stations. Stations hold an API key
// issued out of band; the registry stores only bcrypt hashes and exchanges a
// valid key for a subject-scoped JWT.
package station

import (
	"log/slog"
	"time"

	dErrors "facegate/pkg/domain-errors"
	"facegate/pkg/platform/secrets"
)

// TokenIssuer signs subject tokens for authenticated stations.
type TokenIssuer interface {
	GenerateToken(subjectID, stationID string, expiresIn time.Duration) (string, error)
}

// Registry verifies station API keys against their stored hashes.
type Registry struct {
	hashes   map[string]string
	issuer   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for the registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithTokenTTL overrides the default one-hour token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.tokenTTL = ttl
	}
}

// NewRegistry creates a registry over station-id to bcrypt-hash pairs.
func NewRegistry(hashes map[string]string, issuer TokenIssuer, opts ...Option) *Registry {
	r := &Registry{
		hashes:   hashes,
		issuer:   issuer,
		tokenTTL: time.Hour,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Token authenticates the station and issues a JWT scoped to the subject it
// is serving. Unknown stations and wrong keys are indistinguishable to the
// caller.
func (r *Registry) Token(stationID, apiKey, subjectID string) (string, time.Duration, error) {
	if stationID == "" || apiKey == "" || subjectID == "" {
		return "", 0, dErrors.New(dErrors.CodeInvalidInput, "station_id, api_key and subject_id are required")
	}

	hash, ok := r.hashes[stationID]
	if !ok {
		r.logger.Warn("token request from unknown station", "station_id", stationID)
		return "", 0, dErrors.New(dErrors.CodeUnauthorized, "invalid station credentials")
	}
	if err := secrets.Verify(apiKey, hash); err != nil {
		r.logger.Warn("token request with bad key", "station_id", stationID)
		return "", 0, dErrors.New(dErrors.CodeUnauthorized, "invalid station credentials")
	}

	token, err := r.issuer.GenerateToken(subjectID, stationID, r.tokenTTL)
	if err != nil {
		return "", 0, dErrors.Wrap(dErrors.CodeInternal, "sign station token", err)
	}
	return token, r.tokenTTL, nil
}
