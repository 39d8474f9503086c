package report

import (
	"context"

	"github.com/futig/medwatch-backend/internal/entity"
)

type LLMConnector interface {
	CorrectAnswer(ctx context.Context, text, question string) (*entity.LLMCorrectAnswerResponse, error)
	ReviewReport(ctx context.Context, draft string) (*entity.ReportReview, error)
}

type ASRConnector interface {
	TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error)
}

type ProductsConnector interface {
	Search(ctx context.Context, name string) ([]entity.Product, error)
}

type CallbackConnector interface {
	SendReportSubmitted(ctx context.Context, callbackURL string, requestID string, data *entity.CallbackReportSubmittedData)
	SendError(ctx context.Context, callbackURL string, requestID string, message string, details map[string]any)
}
