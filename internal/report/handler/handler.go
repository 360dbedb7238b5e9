// Package handler exposes the attendance report endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"facegate/internal/attendance/models"
	"facegate/internal/platform/middleware"
	"facegate/internal/report"
	"facegate/internal/transport/http/shared"
	dErrors "facegate/pkg/domain-errors"
)

// Service defines the report operations the handler needs.
type Service interface {
	Subject(ctx context.Context, subjectID string, from, to models.Day) (report.Report, error)
}

// Handler handles report endpoints.
type Handler struct {
	logger       *slog.Logger
	reports      Service
	jwtValidator middleware.JWTValidator
}

// New creates a new report Handler.
func New(reports Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		reports:      reports,
		jwtValidator: jwtValidator,
	}
}

// Register registers the report routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.RequestTime)
		r.Use(middleware.ClientMetadata)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/attendance/report", h.handleReport)
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := middleware.GetSubjectID(ctx)
	if subjectID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing subject"))
		return
	}

	from, to, err := parseRange(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rep, err := h.reports.Subject(ctx, subjectID, from, to)
	if err != nil {
		code := dErrors.CodeOf(err)
		if code == dErrors.CodeInternal || code == dErrors.CodeTransient {
			h.logger.ErrorContext(ctx, "build report failed",
				"request_id", middleware.GetRequestID(ctx),
				"code", string(code),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rep)
}

func parseRange(r *http.Request) (models.Day, models.Day, error) {
	from, err := models.ParseDay(r.URL.Query().Get("start"))
	if err != nil {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "start must be YYYY-MM-DD")
	}
	to, err := models.ParseDay(r.URL.Query().Get("end"))
	if err != nil {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "end must be YYYY-MM-DD")
	}
	return from, to, nil
}
