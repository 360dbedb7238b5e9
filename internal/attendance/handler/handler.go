// Package handler exposes the attendance HTTP surface. Handlers decode and
// validate requests, delegate to the service, and render the shared JSON
// envelopes.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"facegate/internal/attendance/models"
	"facegate/internal/attendance/service"
	"facegate/internal/platform/middleware"
	"facegate/internal/transport/http/shared"
	dErrors "facegate/pkg/domain-errors"
)

// Service defines the attendance operations the handler needs.
type Service interface {
	CheckIn(ctx context.Context, upload service.Upload) (models.AttendanceRecord, error)
	CheckOut(ctx context.Context, upload service.Upload) (models.AttendanceRecord, error)
	Today(ctx context.Context) (models.AttendanceRecord, error)
	History(ctx context.Context, from, to models.Day) ([]models.AttendanceRecord, error)
}

// Handler handles attendance endpoints.
type Handler struct {
	logger       *slog.Logger
	attendance   Service
	jwtValidator middleware.JWTValidator
}

// New creates a new attendance Handler.
func New(attendance Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		attendance:   attendance,
		jwtValidator: jwtValidator,
	}
}

// Register registers the attendance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.RequestTime)
		r.Use(middleware.ClientMetadata)
		r.Use(middleware.DeviceName)
		r.Use(middleware.PresenceMetadata)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/attendance/check-in", h.handleCheckIn)
		r.Post("/attendance/check-out", h.handleCheckOut)
		r.Get("/attendance/today", h.handleToday)
		r.Get("/attendance/history", h.handleHistory)
	})
}

// checkRequest carries the camera frame for a check attempt.
type checkRequest struct {
	// Image is the base64-encoded frame.
	Image       string `json:"image"`
	ContentType string `json:"content_type"`
}

// recordResponse is the wire form of an attendance record.
type recordResponse struct {
	SubjectID       string         `json:"subject_id"`
	Date            string         `json:"date"`
	CheckIn         *eventResponse `json:"check_in,omitempty"`
	CheckOut        *eventResponse `json:"check_out,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty"`
}

type eventResponse struct {
	At         time.Time `json:"at"`
	Status     string    `json:"status"`
	Confidence float64   `json:"confidence"`
	Method     string    `json:"method"`
	Device     string    `json:"device,omitempty"`
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handleCheck(w, r, h.attendance.CheckIn)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handleCheck(w, r, h.attendance.CheckOut)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request, op func(context.Context, service.Upload) (models.AttendanceRecord, error)) {
	ctx := r.Context()

	upload, err := decodeUpload(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid check request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	rec, err := op(ctx, upload)
	if err != nil {
		h.logAndWrite(w, r, "check attempt failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	rec, err := h.attendance.Today(r.Context())
	if err != nil {
		h.logAndWrite(w, r, "load today failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	recs, err := h.attendance.History(r.Context(), from, to)
	if err != nil {
		h.logAndWrite(w, r, "load history failed", err)
		return
	}

	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecordResponse(rec))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"records": out})
}

// logAndWrite logs expected rejections at warn and everything else at error,
// then renders the envelope.
func (h *Handler) logAndWrite(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeTransient {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"code", string(code),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"code", string(code),
		)
	}
	shared.WriteError(w, err)
}

func decodeUpload(r *http.Request) (service.Upload, error) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return service.Upload{}, dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	if req.Image == "" {
		return service.Upload{}, dErrors.New(dErrors.CodeInvalidInput, "image is required")
	}
	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return service.Upload{}, dErrors.New(dErrors.CodeInvalidInput, "image is not valid base64")
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return service.Upload{Data: data, ContentType: contentType}, nil
}

func parseRange(r *http.Request) (models.Day, models.Day, error) {
	from, err := models.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "from must be YYYY-MM-DD")
	}
	to, err := models.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "to must be YYYY-MM-DD")
	}
	return from, to, nil
}

func toRecordResponse(rec models.AttendanceRecord) recordResponse {
	resp := recordResponse{
		SubjectID:       rec.SubjectID,
		Date:            string(rec.Date),
		DurationMinutes: rec.DurationMinutes,
	}
	if rec.CheckIn != nil {
		resp.CheckIn = toEventResponse(*rec.CheckIn)
	}
	if rec.CheckOut != nil {
		resp.CheckOut = toEventResponse(*rec.CheckOut)
	}
	return resp
}

func toEventResponse(event models.CheckEvent) *eventResponse {
	return &eventResponse{
		At:         event.At,
		Status:     string(event.Status),
		Confidence: event.Confidence,
		Method:     event.Method,
		Device:     event.Device,
	}
}
