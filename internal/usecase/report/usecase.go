package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/flow"
	"github.com/futig/medwatch-backend/internal/guard"
	"github.com/futig/medwatch-backend/internal/pkg/formatter"
	"github.com/futig/medwatch-backend/internal/pkg/metrics"
	"github.com/futig/medwatch-backend/internal/questionnaire"
	"github.com/futig/medwatch-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Channel labels for turn metrics
const (
	ChannelHTTP     = "http"
	ChannelTelegram = "telegram"
)

// ExportedReport is a rendered report ready to be sent to the client
type ExportedReport struct {
	Content     []byte
	ContentType string
	Filename    string
}

type Option func(*ReportUsecase)

// WithChannel sets the channel label used for turn metrics
func WithChannel(channel string) Option {
	return func(uc *ReportUsecase) {
		uc.channel = channel
	}
}

// WithCallback enables the reportSubmitted webhook
func WithCallback(callback CallbackConnector) Option {
	return func(uc *ReportUsecase) {
		uc.callbackConnector = callback
	}
}

// WithClock replaces time.Now, used by tests
func WithClock(now func() time.Time) Option {
	return func(uc *ReportUsecase) {
		uc.now = now
	}
}

// ReportUsecase drives a report session from the first question to submission
type ReportUsecase struct {
	sessionRepo       repository.SessionRepository
	reportRepo        repository.ReportRepository
	turnGuard         guard.TurnGuard
	engine            *flow.Engine
	llmConnector      LLMConnector
	asrConnector      ASRConnector
	productsConnector ProductsConnector
	callbackConnector CallbackConnector
	formatters        *formatter.Factory
	channel           string
	now               func() time.Time
	logger            *zap.Logger
}

// NewUsecase creates a new report use case
func NewUsecase(
	sessionRepo repository.SessionRepository,
	reportRepo repository.ReportRepository,
	turnGuard guard.TurnGuard,
	q *questionnaire.Questionnaire,
	llmConnector LLMConnector,
	asrConnector ASRConnector,
	productsConnector ProductsConnector,
	correctionTimeout time.Duration,
	logger *zap.Logger,
	opts ...Option,
) *ReportUsecase {
	uc := &ReportUsecase{
		sessionRepo:       sessionRepo,
		reportRepo:        reportRepo,
		turnGuard:         turnGuard,
		llmConnector:      llmConnector,
		asrConnector:      asrConnector,
		productsConnector: productsConnector,
		formatters:        formatter.NewFactory(),
		channel:           ChannelHTTP,
		now:               time.Now,
		logger:            logger,
	}

	uc.engine = flow.NewEngine(q, instrumentedCorrector{llm: llmConnector}, flow.WithCorrectionTimeout(correctionTimeout))

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *ReportUsecase) questionnaire() *questionnaire.Questionnaire {
	return uc.engine.Questionnaire()
}

// StartSession creates a session and asks the first question
func (uc *ReportUsecase) StartSession(ctx context.Context) (*entity.TurnResult, error) {
	state, result, err := uc.engine.Advance(ctx, flow.State{}, "")
	if err != nil {
		return nil, fmt.Errorf("start questionnaire: %w", err)
	}

	session := &entity.Session{
		ID:      uuid.New().String(),
		Status:  entity.SessionStatusInProgress,
		Cursor:  state.Cursor,
		Answers: state.Answers,
		Turns:   state.Turns,
	}

	created, err := uc.sessionRepo.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "report session started", zap.String("session_id", created.ID))

	return uc.toTurnResult(created, result), nil
}

// SubmitTextAnswer applies one answer to the session
func (uc *ReportUsecase) SubmitTextAnswer(ctx context.Context, sessionID, answer string) (*entity.TurnResult, error) {
	turn, err := uc.applyTurn(ctx, sessionID, answer)
	metrics.TurnsProcessed.WithLabelValues(uc.channel, metrics.Outcome(err)).Inc()
	return turn, err
}

// SubmitAudioAnswer transcribes the audio and applies the transcript as an answer
func (uc *ReportUsecase) SubmitAudioAnswer(ctx context.Context, sessionID string, audioData []byte, filename string) (*entity.TurnResult, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := checkWritable(session); err != nil {
		return nil, err
	}

	transcription, err := uc.transcribeAudio(ctx, filename, audioData)
	if err != nil {
		metrics.TurnsProcessed.WithLabelValues(uc.channel, metrics.Outcome(err)).Inc()
		return nil, err
	}

	return uc.SubmitTextAnswer(ctx, sessionID, transcription)
}

func (uc *ReportUsecase) applyTurn(ctx context.Context, sessionID, input string) (*entity.TurnResult, error) {
	release, err := uc.turnGuard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := checkWritable(session); err != nil {
		return nil, err
	}

	state, result, err := uc.engine.Advance(ctx, sessionToState(session), input)
	if err != nil {
		return nil, fmt.Errorf("advance questionnaire: %w", err)
	}

	appended := state.Turns[len(session.Turns):]

	session.Cursor = state.Cursor
	session.Answers = state.Answers
	session.Turns = state.Turns
	if result.IsEndOfQuestions && session.Status == entity.SessionStatusInProgress {
		session.Status = entity.SessionStatusQuestionsDone
	}

	saved, err := uc.sessionRepo.SaveTurn(ctx, session, appended)
	if err != nil {
		return nil, fmt.Errorf("save turn: %w", err)
	}

	if result.SkippedSection != "" {
		metrics.SectionsSkipped.WithLabelValues(string(result.SkippedSection)).Inc()
	}

	ctxzap.Info(ctx, "answer recorded",
		zap.String("session_id", saved.ID),
		zap.Int("cursor", saved.Cursor),
		zap.Bool("is_end_of_questions", result.IsEndOfQuestions),
		zap.String("classification", string(result.Classification)),
	)

	return uc.toTurnResult(saved, result), nil
}

// GetSession returns the session with its conversation and answers
func (uc *ReportUsecase) GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return uc.toSessionDTO(session), nil
}

// GetSubmittedReport returns the persisted report of a submitted session
func (uc *ReportUsecase) GetSubmittedReport(ctx context.Context, sessionID string) (*entity.Report, error) {
	report, err := uc.reportRepo.GetReportBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get submitted report: %w", err)
	}
	return report, nil
}

// CancelSession stops the session. Cancelling twice is not an error.
func (uc *ReportUsecase) CancelSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	release, err := uc.turnGuard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	switch session.Status {
	case entity.SessionStatusCanceled:
		return uc.toSessionDTO(session), nil
	case entity.SessionStatusSubmitted:
		return nil, entity.ErrSessionSubmitted
	}

	session, err = uc.sessionRepo.UpdateSessionStatus(ctx, sessionID, entity.SessionStatusCanceled)
	if err != nil {
		return nil, fmt.Errorf("update session status: %w", err)
	}

	ctxzap.Info(ctx, "report session cancelled", zap.String("session_id", sessionID))

	return uc.toSessionDTO(session), nil
}

// ReviewReport asks the LLM for a pre-submission review of the finished transcript
func (uc *ReportUsecase) ReviewReport(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	release, err := uc.turnGuard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := checkWritable(session); err != nil {
		return nil, err
	}

	if session.Cursor < uc.questionnaire().Count() {
		return nil, entity.ErrQuestionsNotFinished
	}

	start := time.Now()
	review, err := uc.llmConnector.ReviewReport(ctx, renderTranscript(session.Turns))
	metrics.ObserveCollaborator("llm_review", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrReviewFailed, err)
	}

	session, err = uc.sessionRepo.UpdateSessionReview(ctx, sessionID, review, entity.SessionStatusReviewed)
	if err != nil {
		return nil, fmt.Errorf("update session review: %w", err)
	}

	return uc.toSessionDTO(session), nil
}

// SubmitReport persists the reviewed transcript. A persistence failure leaves
// the session as it was so the submission can be retried.
func (uc *ReportUsecase) SubmitReport(ctx context.Context, sessionID string, req *entity.SubmitReportRequest) (*entity.SubmitReportResponse, error) {
	resp, err := uc.submitReport(ctx, sessionID, req)
	metrics.ReportsSubmitted.WithLabelValues(metrics.Outcome(err)).Inc()
	return resp, err
}

func (uc *ReportUsecase) submitReport(ctx context.Context, sessionID string, req *entity.SubmitReportRequest) (*entity.SubmitReportResponse, error) {
	release, err := uc.turnGuard.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := checkWritable(session); err != nil {
		return nil, err
	}

	if session.Cursor < uc.questionnaire().Count() {
		return nil, entity.ErrQuestionsNotFinished
	}

	if session.Review == nil {
		return nil, entity.ErrNoReview
	}

	report, err := uc.reportRepo.SaveReport(ctx, &entity.Report{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		Transcript: renderTranscript(session.Turns),
		Review:     renderReview(session.Review),
	})
	if err != nil {
		if !errors.Is(err, entity.ErrPersistenceFailed) {
			err = fmt.Errorf("%w: %w", entity.ErrPersistenceFailed, err)
		}
		if uc.callbackConnector != nil && req != nil && req.CallbackURL != "" {
			go uc.callbackConnector.SendError(context.WithoutCancel(ctx), req.CallbackURL, session.ID,
				entity.ErrPersistenceFailed.Error(), map[string]any{"session_id": session.ID})
		}
		return nil, fmt.Errorf("save report: %w", err)
	}

	ctxzap.Info(ctx, "report submitted",
		zap.String("session_id", session.ID),
		zap.String("report_id", report.ID),
	)

	if uc.callbackConnector != nil && req != nil && req.CallbackURL != "" {
		data := &entity.CallbackReportSubmittedData{
			ReportID:  report.ID,
			SessionID: session.ID,
			Answered:  len(session.Answers),
		}
		if !report.CreatedAt.IsZero() {
			data.SubmittedAt = report.CreatedAt.UTC().Format(time.RFC3339)
		}
		go uc.callbackConnector.SendReportSubmitted(context.WithoutCancel(ctx), req.CallbackURL, session.ID, data)
	}

	return &entity.SubmitReportResponse{
		ReportID:  report.ID,
		SessionID: session.ID,
		Status:    entity.SessionStatusSubmitted,
	}, nil
}

// ExportReport renders the session answers in the requested format
func (uc *ReportUsecase) ExportReport(ctx context.Context, sessionID string, format entity.ResultFormat) (*ExportedReport, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	doc := formatter.BuildDocument(uc.questionnaire(), session, uc.now().UTC())

	content, err := f.Format(doc)
	if err != nil {
		return nil, fmt.Errorf("format report: %w", err)
	}

	return &ExportedReport{
		Content:     content,
		ContentType: f.ContentType(),
		Filename:    "medwatch-report-" + session.ID + f.FileExtension(),
	}, nil
}

// Questionnaire lists every question in order
func (uc *ReportUsecase) Questionnaire() *entity.QuestionnaireResponse {
	q := uc.questionnaire()
	return &entity.QuestionnaireResponse{
		Count:     q.Count(),
		Questions: q.Questions(),
	}
}

// SearchProducts looks up products by name for the product detail questions
func (uc *ReportUsecase) SearchProducts(ctx context.Context, name string) (*entity.ProductsResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", entity.ErrMissingField)
	}

	start := time.Now()
	products, err := uc.productsConnector.Search(ctx, name)
	metrics.ObserveCollaborator("products", start, err)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	if products == nil {
		products = []entity.Product{}
	}

	return &entity.ProductsResponse{Products: products}, nil
}
