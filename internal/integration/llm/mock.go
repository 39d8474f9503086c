package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is an offline LLM connector for local runs
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// CorrectAnswer returns the answer with normalized whitespace and a capital first letter
func (m *MockConnector) CorrectAnswer(ctx context.Context, text, question string) (*entity.LLMCorrectAnswerResponse, error) {
	ctxzap.Info(ctx, "[MOCK] correcting answer via LLM")

	corrected := strings.Join(strings.Fields(text), " ")
	if corrected != "" {
		corrected = strings.ToUpper(corrected[:1]) + corrected[1:]
	}

	resp := &entity.LLMCorrectAnswerResponse{
		CorrectedText: corrected,
		IntentSummary: fmt.Sprintf("User answered %q", question),
	}

	lower := strings.ToLower(corrected)
	switch {
	case strings.Contains(lower, "device"):
		resp.ProductType = "Medical Device"
	case strings.Contains(lower, "pill"), strings.Contains(lower, "medicine"), strings.Contains(lower, "syrup"):
		resp.ProductType = "Prescription or over-the-counter medicine"
	}

	return resp, nil
}

// ReviewReport returns a fixed review
func (m *MockConnector) ReviewReport(ctx context.Context, draft string) (*entity.ReportReview, error) {
	ctxzap.Info(ctx, "[MOCK] reviewing report via LLM")

	lines := 0
	for _, line := range strings.Split(draft, "\n") {
		if strings.HasPrefix(line, string(entity.RoleUser)+":") {
			lines++
		}
	}

	return &entity.ReportReview{
		ConsistencyCheck:   "No contradictions found between the answers.",
		CompletenessScore:  fmt.Sprintf("%d answers provided.", lines),
		AnonymizationCheck: "Review personal details before submitting.",
		ClarityAssessment:  "The report is clear.",
	}, nil
}
