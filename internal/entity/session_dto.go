package entity

import (
	"mime/multipart"
	"time"
)

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatJSON     ResultFormat = "json"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatJSON, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

type SubmitAudioAnswerRequest struct {
	AudioFile *multipart.FileHeader
}

type SubmitReportRequest struct {
	CallbackURL string `json:"callback_url,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TurnResult is what a single questionnaire turn produces for the caller
type TurnResult struct {
	SessionID        string        `json:"session_id"`
	Response         string        `json:"response"`
	Cursor           int           `json:"next_question_index"`
	IsEndOfQuestions bool          `json:"is_end_of_questions"`
	NextQuestion     *Question     `json:"next_question,omitempty"`
	IntentSummary    string        `json:"intent_summary,omitempty"`
	ProductTypeHint  string        `json:"product_type,omitempty"`
	Classification   ProductClass  `json:"classification,omitempty"`
	SkippedSection   Section       `json:"skipped_section,omitempty"`
	Status           SessionStatus `json:"session_status"`
}

type SessionDTO struct {
	ID               string            `json:"session_id"`
	Status           SessionStatus     `json:"session_status"`
	Cursor           int               `json:"next_question_index"`
	IsEndOfQuestions bool              `json:"is_end_of_questions"`
	Answers          map[string]string `json:"answers"`
	Conversation     []Turn            `json:"conversation"`
	Review           *ReportReview     `json:"review,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type SubmitReportResponse struct {
	ReportID  string        `json:"report_id"`
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"session_status"`
}

type QuestionnaireResponse struct {
	Count     int        `json:"count"`
	Questions []Question `json:"questions"`
}

type ProductsResponse struct {
	Products []Product `json:"products"`
}
