package entity

import (
	"fmt"
	"time"
)

type SessionStatus string

// Session status tracks the report session from the first question to submission
const (
	SessionStatusInProgress    SessionStatus = "IN_PROGRESS"    // Questionnaire is being answered
	SessionStatusQuestionsDone SessionStatus = "QUESTIONS_DONE" // All questions answered, waiting for review
	SessionStatusReviewed      SessionStatus = "REVIEWED"       // Pre-submission review generated
	SessionStatusSubmitted     SessionStatus = "SUBMITTED"      // Report persisted
	SessionStatusCanceled      SessionStatus = "CANCELED"       // Session cancelled by user
)

// IsFinal reports whether no more turns may be applied to the session
func (s SessionStatus) IsFinal() bool {
	return s == SessionStatusSubmitted || s == SessionStatusCanceled
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation log
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Section string

// Questionnaire sections, in the order they are asked
const (
	SectionProblem      Section = "A" // About the problem
	SectionAvailability Section = "B" // Product availability
	SectionProduct      Section = "C" // About the product (not a medical device)
	SectionDevice       Section = "D" // About the medical device
	SectionPerson       Section = "E" // About the person who had the problem
	SectionReporter     Section = "F" // About the person submitting the report
)

func (s Section) Validate() error {
	switch s {
	case SectionProblem, SectionAvailability, SectionProduct, SectionDevice, SectionPerson, SectionReporter:
		return nil
	default:
		return fmt.Errorf("unknown section: %s", s)
	}
}

// ProductClass is the branch classification derived from the answers
type ProductClass string

const (
	ProductClassUnknown       ProductClass = "unknown"
	ProductClassMedication    ProductClass = "medication"
	ProductClassMedicalDevice ProductClass = "medical_device"
	ProductClassOther         ProductClass = "other"
)

type Question struct {
	Index   int     `json:"index"`
	Section Section `json:"section"`
	Text    string  `json:"text"`
}

// AnswerKey renders the stable answer map key for a question index
func AnswerKey(index int) string {
	return fmt.Sprintf("question_%d", index)
}

type ReportReview struct {
	ConsistencyCheck   string `json:"consistency_check"`
	CompletenessScore  string `json:"completeness_score"`
	AnonymizationCheck string `json:"anonymization_check"`
	ClarityAssessment  string `json:"clarity_assessment"`
}

type Session struct {
	ID        string            `json:"session_id"`
	Status    SessionStatus     `json:"session_status"`
	Cursor    int               `json:"cursor"`
	Answers   map[string]string `json:"answers"`
	Turns     []Turn            `json:"conversation"`
	Review    *ReportReview     `json:"review,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Report is the persisted, submitted form of a session
type Report struct {
	ID         string    `json:"report_id"`
	SessionID  string    `json:"session_id"`
	Transcript string    `json:"transcript"`
	Review     string    `json:"review"`
	CreatedAt  time.Time `json:"created_at"`
}

type Product struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Manufacturer string `json:"manufacturer"`
}
