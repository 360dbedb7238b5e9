// Package handler exposes the enrollment HTTP surface.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"facegate/internal/capture"
	"facegate/internal/enrollment"
	"facegate/internal/platform/middleware"
	"facegate/internal/transport/http/shared"
	dErrors "facegate/pkg/domain-errors"
	"facegate/pkg/requestcontext"
)

// Service defines the enrollment operations the handler needs.
type Service interface {
	Enroll(ctx context.Context, subjectID string, sample capture.Sample) (enrollment.Record, error)
}

// Handler handles enrollment endpoints.
type Handler struct {
	logger       *slog.Logger
	enrollment   Service
	jwtValidator middleware.JWTValidator
}

// New creates a new enrollment Handler.
func New(enrollment Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		enrollment:   enrollment,
		jwtValidator: jwtValidator,
	}
}

// Register registers the enrollment routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.RequestTime)
		r.Use(middleware.ClientMetadata)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/faces/enroll", h.handleEnroll)
	})
}

type enrollRequest struct {
	// Image is the base64-encoded face example.
	Image       string `json:"image"`
	ContentType string `json:"content_type"`
}

type enrollResponse struct {
	SubjectID  string    `json:"subject_id"`
	FaceID     string    `json:"face_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := middleware.GetSubjectID(ctx)

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Image == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "image is required"))
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "image is not valid base64"))
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	record, err := h.enrollment.Enroll(ctx, subjectID, capture.Sample{
		Data:        data,
		ContentType: contentType,
		CapturedAt:  requestcontext.Now(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "enrollment failed",
			"request_id", middleware.GetRequestID(ctx),
			"code", string(dErrors.CodeOf(err)),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, enrollResponse{
		SubjectID:  record.SubjectID,
		FaceID:     record.FaceID,
		EnrolledAt: record.EnrolledAt,
	})
}
