package entity

// CallbackEventType names the webhook event, also sent as X-MedWatch-Event
type CallbackEventType string

const (
	CallbackEventTypeReportSubmitted CallbackEventType = "reportSubmitted"
	CallbackEventTypeError           CallbackEventType = "error"
)

// CallbackEvent is the envelope posted to a submit callback_url.
// Timestamp is RFC 3339 in UTC.
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"`
	Data      any               `json:"data"`
}

type CallbackReportSubmittedData struct {
	ReportID    string `json:"report_id"`
	SessionID   string `json:"session_id"`
	Answered    int    `json:"answered_questions"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

// CallbackErrorData wraps a failure so receivers can branch on "error"
type CallbackErrorData struct {
	Error CallbackErrorDetails `json:"error"`
}

type CallbackErrorDetails struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
