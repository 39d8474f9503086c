package asr

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Offline transcripts. The same recording always yields the same one.
var mockTranscripts = []string{
	"I took two pills of my prescription medicine and got a rash on my arms the next morning",
	"My insulin pump stopped delivering and the screen showed an occlusion alarm",
	"It started about three days after the first dose and I went to urgent care",
}

// MockConnector stands in for the speech service when mocks are enabled
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("%w: empty audio", entity.ErrInvalidFile)
	}

	sum := sha256.Sum256(audioData)
	text := mockTranscripts[int(sum[0])%len(mockTranscripts)]

	ctxzap.Info(ctx, "mock transcription",
		zap.String("filename", filename),
		zap.Int("size", len(audioData)),
	)
	return text, nil
}
