package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionCancelled     = errors.New("session is cancelled")
	ErrSessionSubmitted     = errors.New("session is already submitted")
	ErrQuestionsNotFinished = errors.New("questionnaire is not finished")
	ErrNoReview             = errors.New("pre-submission review not available")
	ErrTurnInProgress       = errors.New("another turn is in progress for this session")
	ErrReportNotFound       = errors.New("report not found")

	// Flow errors
	ErrInvalidCursor    = errors.New("invalid question cursor")
	ErrEmptyAnswer      = errors.New("answer is empty")
	ErrCorrectionFailed = errors.New("answer correction failed")

	// Collaborator errors
	ErrReviewFailed        = errors.New("pre-submission review failed")
	ErrTranscriptionFailed = errors.New("audio transcription failed")
	ErrPersistenceFailed   = errors.New("report could not be saved, please retry")

	// File errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
