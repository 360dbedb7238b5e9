// Package handler exposes the station token exchange.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"facegate/internal/platform/middleware"
	"facegate/internal/station"
	"facegate/internal/transport/http/shared"
	dErrors "facegate/pkg/domain-errors"
)

// Handler handles station authentication endpoints.
type Handler struct {
	logger   *slog.Logger
	registry *station.Registry
}

// New creates a new station Handler.
func New(registry *station.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
	}
}

// Register registers the station routes with the chi router. These routes are
// the entry point for unauthenticated stations, so no RequireAuth here.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.ClientMetadata)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(10 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Post("/auth/station-token", h.handleToken)
	})
}

type tokenRequest struct {
	StationID string `json:"station_id"`
	APIKey    string `json:"api_key"`
	SubjectID string `json:"subject_id"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	token, ttl, err := h.registry.Token(req.StationID, req.APIKey, req.SubjectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
	})
}
