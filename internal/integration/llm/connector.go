package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/integration/common"
	"github.com/futig/medwatch-backend/internal/pkg/retry"
	pkghttp "github.com/futig/medwatch-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector("llm", cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// CorrectAnswer fixes spelling in an answer and summarizes its intent
func (c *Connector) CorrectAnswer(ctx context.Context, text, question string) (*entity.LLMCorrectAnswerResponse, error) {
	ctxzap.Debug(ctx, "correcting answer via LLM service", zap.Int("answer_length", len(text)))

	req := &entity.LLMCorrectAnswerRequest{
		Text:            text,
		CurrentQuestion: question,
	}

	resp, err := retry.DoWithData(ctx, &c.config.Retry, func() (*entity.LLMCorrectAnswerResponse, error) {
		var resp entity.LLMCorrectAnswerResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.CorrectAnswerEndpoint, req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("correct answer failed: %w", err)
	}

	if resp.CorrectedText == "" {
		return nil, fmt.Errorf("invalid correction response: empty or missing corrected_text field")
	}

	ctxzap.Debug(ctx, "answer corrected successfully", zap.String("product_type", resp.ProductType))

	return resp, nil
}

// ReviewReport runs the pre-submission review over the report draft
func (c *Connector) ReviewReport(ctx context.Context, draft string) (*entity.ReportReview, error) {
	ctxzap.Info(ctx, "reviewing report via LLM service", zap.Int("draft_length", len(draft)))

	req := &entity.LLMReviewReportRequest{ReportDraft: draft}

	resp, err := retry.DoWithData(ctx, &c.config.Retry, func() (*entity.LLMReviewReportResponse, error) {
		var resp entity.LLMReviewReportResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ReviewReportEndpoint, req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("review report failed: %w", err)
	}

	ctxzap.Info(ctx, "report reviewed successfully")

	return &entity.ReportReview{
		ConsistencyCheck:   resp.ConsistencyCheck,
		CompletenessScore:  resp.CompletenessScore,
		AnonymizationCheck: resp.AnonymizationCheck,
		ClarityAssessment:  resp.ClarityAssessment,
	}, nil
}
