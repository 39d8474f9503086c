package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/futig/medwatch-backend/internal/entity"
)

const (
	// Welcome messages
	MsgWelcome = `👋 Hi! I will help you report a problem with a medical product to MedWatch.

I will ask you a series of short questions about:
• what happened
• the product or medical device involved
• the person who had the problem
• you, the reporter

You can answer with text or a voice message.`

	MsgHelp = `🤖 Commands:

/start - Start a new report
/help - Show this help
/cancel - Cancel the current report

How it works:
1. Answer the questions one by one, by text or voice
2. Review the summary of your report
3. Submit it or download it as a PDF`

	// Progress
	MsgTranscribing = `🎤 Transcribing your voice message...`
	MsgReviewing    = `🔍 Reviewing your report before submission...`

	// Questionnaire finished
	MsgQuestionsDone = `✅ All questions are answered.

You can now review the report, download it, or cancel.`

	// Review ready
	MsgReview = `📋 Pre-submission review

Consistency: %s
Completeness: %s
Anonymization: %s
Clarity: %s

Submit the report when you are ready.`

	// Submission
	MsgSubmitted = `✅ Your report has been submitted. Reference: %s

Thank you! To start a new report, press /start`

	MsgUseButtons = `ℹ️ The questionnaire is finished. Use the buttons below to continue.`

	// Cancellation
	MsgConfirmCancel   = `⚠️ Are you sure? All answers of this report will be lost.`
	MsgCancelAborted   = `👍 Let's continue.`
	MsgSessionFinished = `👋 The report was cancelled.

To start a new one, press /start`

	MsgNoSession      = `There is no active report. Press /start`
	MsgUnknownCommand = `❌ Unknown command. Press /start`

	// Errors
	ErrGeneric            = `❌ Something went wrong. Please try again or press /start`
	ErrTranscription      = `❌ I could not understand the voice message. Please try again or type your answer.`
	ErrSessionNotFound    = `❌ Report not found. Start a new one with /start`
	ErrInvalidState       = `❌ This action is not available right now. Press /start to begin again.`
	ErrEmptyAnswer        = `❌ The answer is empty. Please type or say something.`
	ErrVoiceTooLarge      = `❌ The voice message is too long. Please split it or type your answer.`
	ErrTurnInProgress     = `⏳ I am still processing your previous answer, please wait a moment.`
	ErrCorrection         = `❌ I could not process the answer right now. Please send it again.`
	ErrReview             = `❌ The review could not be generated. Please try again.`
	ErrPersistence        = `❌ The report could not be saved. Please press Submit again.`
	ErrNetworkIssue       = `❌ Connection problem. Please try again later.`
	ErrServiceUnavailable = `❌ The service is temporarily unavailable. Please try again in a few minutes.`
	ErrTimeout            = `❌ The operation took too long. Please try again.`
	ErrRateLimited        = `⚠️ Too many messages. Please wait a little.`
)

// RenderTurn formats the assistant reply with a progress line while questions remain
func RenderTurn(turn *entity.TurnResult, total int) string {
	if turn.IsEndOfQuestions || turn.NextQuestion == nil {
		return turn.Response
	}

	return fmt.Sprintf("%s\n\n📌 Question %d of %d", turn.Response, turn.NextQuestion.Index+1, total)
}

// RenderReview formats the pre-submission review
func RenderReview(review *entity.ReportReview) string {
	if review == nil {
		return ErrReview
	}

	return fmt.Sprintf(MsgReview,
		review.ConsistencyCheck,
		review.CompletenessScore,
		review.AnonymizationCheck,
		review.ClarityAssessment,
	)
}

// RenderSubmitted formats the submission confirmation
func RenderSubmitted(reportID string) string {
	return fmt.Sprintf(MsgSubmitted, reportID)
}

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, entity.ErrEmptyAnswer):
		return ErrEmptyAnswer
	case errors.Is(err, entity.ErrFileTooLarge):
		return ErrVoiceTooLarge
	case errors.Is(err, entity.ErrTurnInProgress):
		return ErrTurnInProgress
	case errors.Is(err, entity.ErrTranscriptionFailed):
		return ErrTranscription
	case errors.Is(err, entity.ErrCorrectionFailed):
		return ErrCorrection
	case errors.Is(err, entity.ErrReviewFailed):
		return ErrReview
	case errors.Is(err, entity.ErrPersistenceFailed):
		return ErrPersistence
	case errors.Is(err, entity.ErrSessionCancelled), errors.Is(err, entity.ErrSessionSubmitted),
		errors.Is(err, entity.ErrQuestionsNotFinished), errors.Is(err, entity.ErrNoReview):
		return ErrInvalidState
	}

	// Check for timeout errors
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}

	// Check for network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	if strings.Contains(err.Error(), "connection refused") {
		return ErrServiceUnavailable
	}

	return ErrGeneric
}
