package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/pkg/logger"
	"github.com/futig/medwatch-backend/internal/pkg/response"
	"github.com/futig/medwatch-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ReportUsecase
	validator *validator.Validator
}

func NewHandler(usecase ReportUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// StartSession handles POST /report-session - Start new report session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	turn, err := h.usecase.StartSession(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "report session started", zap.String("session_id", turn.SessionID))
	response.Created(w, turn)
}

// GetSession handles GET /report-session/{id} - Get session with conversation
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GetSession")

	ctxzap.Debug(ctx, "fetching session")

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// GetSubmittedReport handles GET /report-session/{id}/report - Persisted report of a submitted session
func (h *Handler) GetSubmittedReport(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GetSubmittedReport")

	report, err := h.usecase.GetSubmittedReport(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, report)
}

// SubmitTextAnswer handles POST /report-session/{id}/answer - Submit text answer
func (h *Handler) SubmitTextAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SubmitTextAnswer")

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitAnswer(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	turn, err := h.usecase.SubmitTextAnswer(ctx, sessionID, req.Answer)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "text answer processed",
		zap.Int("next_question_index", turn.Cursor),
		zap.Bool("is_end_of_questions", turn.IsEndOfQuestions),
	)
	response.Success(w, turn)
}

// SubmitAudioAnswer handles POST /report-session/{id}/answer/audio - Submit WAV answer
func (h *Handler) SubmitAudioAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SubmitAudioAnswer")

	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxUploadSize())
	if err := r.ParseMultipartForm(h.validator.MaxUploadSize()); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "failed to parse form", err)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "audio file is required", err)
		return
	}
	defer file.Close()

	req := entity.SubmitAudioAnswerRequest{AudioFile: header}
	if err := h.validator.ValidateSubmitAudioAnswer(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "submitting audio answer", zap.Int64("size_bytes", header.Size))

	turn, err := h.usecase.SubmitHTTPAudioAnswer(ctx, sessionID, header)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, turn)
}

// ReviewReport handles POST /report-session/{id}/review - Generate pre-submission review
func (h *Handler) ReviewReport(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "ReviewReport")

	session, err := h.usecase.ReviewReport(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "report reviewed")
	response.Success(w, session)
}

// SubmitReport handles POST /report-session/{id}/submit - Persist the report
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SubmitReport")

	var req entity.SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitReport(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	resp, err := h.usecase.SubmitReport(ctx, sessionID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "report submitted", zap.String("report_id", resp.ReportID))
	response.Success(w, resp)
}

// ExportReport handles GET /report-session/{id}/export - Download the report
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "ExportReport")

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatMarkdown)
	}

	format := entity.ResultFormat(formatParam)
	if !format.IsValid() {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter",
			fmt.Errorf("format must be one of: markdown, json, docx, pdf"))
		return
	}

	ctx = logger.AddFields(ctx, zap.String("format", string(format)))

	exported, err := h.usecase.ExportReport(ctx, sessionID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "report exported", zap.Int("bytes", len(exported.Content)))
	if err := response.Attachment(w, exported.ContentType, exported.Filename, exported.Content); err != nil {
		ctxzap.Warn(ctx, "write export body", zap.Error(err))
	}
}

// CancelSession handles POST /report-session/{id}/cancel - Cancel session
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "CancelSession")

	session, err := h.usecase.CancelSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session cancelled")
	response.Success(w, session)
}

// GetQuestionnaire handles GET /questionnaire - List all questions
func (h *Handler) GetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.usecase.Questionnaire())
}

// SearchProducts handles GET /products?name= - Product lookup
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SearchProducts")

	products, err := h.usecase.SearchProducts(ctx, r.URL.Query().Get("name"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, products)
}

func (h *Handler) sessionContext(r *http.Request, action string) (context.Context, string) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", action),
	)
	return ctx, sessionID
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}

	if err != nil && status < http.StatusInternalServerError {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound) || errors.Is(err, entity.ErrReportNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrEmptyAnswer) || errors.Is(err, entity.ErrInvalidParameter) ||
		errors.Is(err, entity.ErrInvalidFormat) || errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrInvalidExtension) || errors.Is(err, entity.ErrFileTooLarge) || errors.Is(err, entity.ErrInvalidFile):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file", err)
	case errors.Is(err, entity.ErrTurnInProgress):
		h.respondError(ctx, w, http.StatusConflict, "another answer is being processed", err)
	case errors.Is(err, entity.ErrSessionCancelled) || errors.Is(err, entity.ErrSessionSubmitted) ||
		errors.Is(err, entity.ErrQuestionsNotFinished) || errors.Is(err, entity.ErrNoReview):
		h.respondError(ctx, w, http.StatusConflict, "invalid session state", err)
	case errors.Is(err, entity.ErrCorrectionFailed) || errors.Is(err, entity.ErrReviewFailed) ||
		errors.Is(err, entity.ErrTranscriptionFailed):
		h.respondError(ctx, w, http.StatusBadGateway, "upstream service failed", err)
	case errors.Is(err, entity.ErrPersistenceFailed):
		w.Header().Set("Retry-After", "1")
		h.respondError(ctx, w, http.StatusServiceUnavailable, entity.ErrPersistenceFailed.Error(), err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
