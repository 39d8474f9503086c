package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/pkg/metrics"
)

// instrumentedCorrector records correction latency for every engine turn
type instrumentedCorrector struct {
	llm LLMConnector
}

func (c instrumentedCorrector) CorrectAnswer(ctx context.Context, text, question string) (*entity.LLMCorrectAnswerResponse, error) {
	start := time.Now()
	resp, err := c.llm.CorrectAnswer(ctx, text, question)
	metrics.ObserveCollaborator("llm_correct", start, err)
	return resp, err
}

// checkWritable rejects sessions that no longer accept changes
func checkWritable(session *entity.Session) error {
	switch session.Status {
	case entity.SessionStatusCanceled:
		return entity.ErrSessionCancelled
	case entity.SessionStatusSubmitted:
		return entity.ErrSessionSubmitted
	default:
		return nil
	}
}

// renderTranscript writes the conversation as "role: text" lines. Turns with
// no content, such as the opening user turn, are left out.
func renderTranscript(turns []entity.Turn) string {
	var sb strings.Builder
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
	}
	return sb.String()
}

func renderReview(review *entity.ReportReview) string {
	if review == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "consistency_check: %s\n", review.ConsistencyCheck)
	fmt.Fprintf(&sb, "completeness_score: %s\n", review.CompletenessScore)
	fmt.Fprintf(&sb, "anonymization_check: %s\n", review.AnonymizationCheck)
	fmt.Fprintf(&sb, "clarity_assessment: %s\n", review.ClarityAssessment)
	return sb.String()
}

// transcribeAudio transcribes audio file to text
func (uc *ReportUsecase) transcribeAudio(ctx context.Context, filename string, audioData []byte) (string, error) {
	start := time.Now()
	transcript, err := uc.asrConnector.TranscribeBytes(ctx, audioData, filename)
	metrics.ObserveCollaborator("asr", start, err)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrTranscriptionFailed, err)
	}

	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("transcription is empty: %w", entity.ErrEmptyAnswer)
	}

	return transcript, nil
}
