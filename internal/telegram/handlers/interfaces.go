package handlers

import (
	"context"

	"github.com/futig/medwatch-backend/internal/entity"
	reportuc "github.com/futig/medwatch-backend/internal/usecase/report"
)

// ReportUsecase defines the report operations the Telegram bot drives
type ReportUsecase interface {
	StartSession(ctx context.Context) (*entity.TurnResult, error)
	SubmitTextAnswer(ctx context.Context, sessionID, answer string) (*entity.TurnResult, error)
	SubmitAudioAnswer(ctx context.Context, sessionID string, audioData []byte, filename string) (*entity.TurnResult, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	CancelSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	ReviewReport(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	SubmitReport(ctx context.Context, sessionID string, req *entity.SubmitReportRequest) (*entity.SubmitReportResponse, error)
	ExportReport(ctx context.Context, sessionID string, format entity.ResultFormat) (*reportuc.ExportedReport, error)
	Questionnaire() *entity.QuestionnaireResponse
}
