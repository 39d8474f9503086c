package report

import (
	"context"
	"mime/multipart"

	"github.com/futig/medwatch-backend/internal/entity"
	reportuc "github.com/futig/medwatch-backend/internal/usecase/report"
)

type ReportUsecase interface {
	StartSession(ctx context.Context) (*entity.TurnResult, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	SubmitTextAnswer(ctx context.Context, sessionID, answer string) (*entity.TurnResult, error)
	SubmitHTTPAudioAnswer(ctx context.Context, sessionID string, audioFile *multipart.FileHeader) (*entity.TurnResult, error)
	CancelSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	ReviewReport(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	SubmitReport(ctx context.Context, sessionID string, req *entity.SubmitReportRequest) (*entity.SubmitReportResponse, error)
	GetSubmittedReport(ctx context.Context, sessionID string) (*entity.Report, error)
	ExportReport(ctx context.Context, sessionID string, format entity.ResultFormat) (*reportuc.ExportedReport, error)
	Questionnaire() *entity.QuestionnaireResponse
	SearchProducts(ctx context.Context, name string) (*entity.ProductsResponse, error)
}
